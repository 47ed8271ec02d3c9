package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bnema/webkit-content-blocker/internal/blocker"
	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
)

// CheckRequest is the body of POST /v1/check.
// Fields left out are inferred where possible: the resource type from
// content_type, the third-party flag from top_url.
type CheckRequest struct {
	URL          string `json:"url" binding:"required"`
	ResourceType string `json:"resource_type"`
	ContentType  string `json:"content_type"`
	ThirdParty   *bool  `json:"third_party"`
	MainFrame    *bool  `json:"main_frame"`
	TopURL       string `json:"top_url"`
}

// CheckResponse is the decision plus what the caller needs to apply it
type CheckResponse struct {
	models.Decision
	UpgradedURL string `json:"upgraded_url,omitempty"`
	Stylesheet  string `json:"stylesheet,omitempty"`
}

// RulesResponse describes the active rule list
type RulesResponse struct {
	Count       int            `json:"count"`
	Total       int            `json:"total"`
	Skipped     int            `json:"skipped"`
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// toMatchRequest classifies the body into a MatchRequest
func (in CheckRequest) toMatchRequest() (models.MatchRequest, bool) {
	req := models.MatchRequest{
		URL:    in.URL,
		TopURL: in.TopURL,
	}

	switch {
	case in.ResourceType != "":
		rt, ok := models.ParseResourceType(in.ResourceType)
		if !ok {
			return req, false
		}
		req.ResourceType = rt
	case in.ContentType != "":
		req.ResourceType = blocker.ResourceTypeFromContentType(in.ContentType)
	default:
		req.ResourceType = models.ResourceRaw
	}

	if in.ThirdParty != nil {
		req.IsThirdParty = *in.ThirdParty
	} else if tp, known := blocker.IsThirdParty(in.TopURL, in.URL); known {
		req.IsThirdParty = tp
	}

	if in.MainFrame != nil {
		req.IsForMainFrame = *in.MainFrame
	} else {
		req.FrameUnknown = true
	}

	return req, true
}

func (s *Server) check(c *gin.Context) {
	var in CheckRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, ok := in.toMatchRequest()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown resource_type: " + in.ResourceType})
		return
	}

	d := s.handler.Check(req)
	resp := CheckResponse{Decision: d}

	switch d.Outcome {
	case models.OutcomeUpgradeToHTTPS:
		resp.UpgradedURL = blocker.ApplyDecision(d, in.URL)
	case models.OutcomeInjectCSSHideSelector:
		resp.Stylesheet = blocker.HideStylesheet(d.Selector)
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) listRules(c *gin.Context) {
	c.JSON(http.StatusOK, rulesResponse(s.handler.Rules()))
}

func (s *Server) reloadRules(c *gin.Context) {
	if s.reload == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "reload not configured"})
		return
	}

	if _, err := s.reload(c.Request.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("rule reload failed, keeping current rules")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rulesResponse(s.handler.Rules()))
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"rules":  s.handler.Rules().Len(),
	})
}

func rulesResponse(list *rules.RuleList) RulesResponse {
	diag := list.Diagnostics()
	resp := RulesResponse{
		Count:       list.Len(),
		Total:       diag.Total,
		Skipped:     diag.Skipped,
		SkipReasons: diag.SkipReasons,
	}
	for _, err := range diag.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}
	for _, w := range diag.Warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return resp
}

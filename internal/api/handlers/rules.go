package handlers

import (
	"net/http"
	"time"

	"github.com/neurofin/loan-processor/internal/api/middleware"
	"github.com/neurofin/loan-processor/internal/compliance"
	"github.com/neurofin/loan-processor/internal/config"
)

type ruleView struct {
	Name        string `json:"rule_name"`
	Description string `json:"rule_description"`
	Severity    string `json:"severity"`
	Threshold   string `json:"threshold"`
}

// Rules handles GET /api/rules: the effective thresholds and the rule set
// they produce.
func Rules(engine *compliance.Engine) http.HandlerFunc {
	rules := engine.Rules()
	views := make([]ruleView, 0, len(rules))
	for _, r := range rules {
		views = append(views, ruleView{
			Name:        r.Name,
			Description: r.Description,
			Severity:    string(r.Severity),
			Threshold:   r.Limit,
		})
	}
	thresholds := config.FromThresholds(engine.Thresholds())

	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"thresholds": thresholds,
			"rules":      views,
			"count":      len(views),
		})
	}
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

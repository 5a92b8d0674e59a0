package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vnkhanh/survey-platform/controllers"
	"github.com/vnkhanh/survey-platform/middleware"
)

// Limiters are the per-IP limiters guarding the write-heavy public routes.
type Limiters struct {
	Create *middleware.IPRateLimiter
	Vote   *middleware.IPRateLimiter
}

func SetupRoutes(r *gin.Engine, h *controllers.Handler, lim Limiters) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Metrics.Registry, promhttp.HandlerOpts{})))

	authed := middleware.AuthToken(h.DB, h.JWTSecret, h.Blacklist)

	r.POST("/api-token-auth/", h.Login)

	api := r.Group("/api")
	{
		api.POST("/register/", h.Register)
		api.POST("/logout/", authed, h.Logout)

		profile := api.Group("/profile/me")
		profile.Use(authed)
		{
			profile.GET("/", h.GetProfile)
			profile.PATCH("/", h.UpdateProfile)
		}

		// public voting
		api.GET("/surveys/vote_access/", h.VoteAccess)
		api.POST("/surveys/:id/submit_votes/", middleware.RateLimitByIP(lim.Vote), h.SubmitVotes)
		api.POST("/choices/:id/vote/", middleware.RateLimitByIP(lim.Vote), h.VoteChoice)

		surveys := api.Group("/surveys")
		surveys.Use(authed)
		{
			owner := middleware.CheckSurveyOwner(h.DB)
			surveys.GET("/", h.ListSurveys)
			surveys.POST("/", middleware.RateLimitByIP(lim.Create), h.CreateSurvey)
			surveys.GET("/:id/", owner, h.GetSurvey)
			surveys.PATCH("/:id/", owner, h.UpdateSurvey)
			surveys.DELETE("/:id/", owner, h.DeleteSurvey)
			surveys.GET("/:id/report.pdf", owner, h.SurveyReport)
			surveys.GET("/:id/export.xlsx", owner, h.SurveyExport)
		}

		questions := api.Group("/questions")
		questions.Use(authed)
		{
			owner := middleware.CheckQuestionOwner(h.DB)
			questions.GET("/", h.ListQuestions)
			questions.POST("/", h.CreateQuestion)
			questions.GET("/:id/", owner, h.GetQuestion)
			questions.PATCH("/:id/", owner, h.UpdateQuestion)
			questions.DELETE("/:id/", owner, h.DeleteQuestion)
		}

		choices := api.Group("/choices")
		choices.Use(authed)
		{
			owner := middleware.CheckChoiceOwner(h.DB)
			choices.GET("/", h.ListChoices)
			choices.POST("/", h.CreateChoice)
			choices.GET("/:id/", owner, h.GetChoice)
			choices.PATCH("/:id/", owner, h.UpdateChoice)
			choices.DELETE("/:id/", owner, h.DeleteChoice)
		}
	}
}

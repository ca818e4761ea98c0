package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vgroup-backoffice/config"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/handlers"
	"vgroup-backoffice/internal/gateway/middleware"
	"vgroup-backoffice/internal/gateway/realtime"
	"vgroup-backoffice/internal/health"
	"vgroup-backoffice/internal/services/admin"
	"vgroup-backoffice/internal/services/cms"
	"vgroup-backoffice/internal/services/commissions"
	"vgroup-backoffice/internal/services/dashboard"
	"vgroup-backoffice/internal/services/export"
	"vgroup-backoffice/internal/services/ledger"
	"vgroup-backoffice/internal/services/operations"
	"vgroup-backoffice/internal/services/user"
	"vgroup-backoffice/internal/services/workforce"
	"vgroup-backoffice/internal/utils"
)

type services struct {
	users       *user.Service
	workforce   *workforce.Service
	ledger      *ledger.Service
	commissions *commissions.Service
	operations  *operations.Service
	dashboard   *dashboard.Service
	export      *export.Service
	reset       *admin.Service
	cms         *cms.Service
}

func newRouter(cfg config.Config, log *zap.Logger, tokens *utils.TokenManager, svc services, hub *realtime.Hub, checker *health.Checker) (*gin.Engine, error) {
	rateLimit, err := middleware.RateLimit(cfg.App.RateLimit)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(rateLimit)

	userHandler := handlers.NewUserHTTPHandler(svc.users)
	workforceHandler := handlers.NewWorkforceHTTPHandler(svc.workforce)
	ledgerHandler := handlers.NewLedgerHTTPHandler(svc.ledger)
	commissionsHandler := handlers.NewCommissionsHTTPHandler(svc.commissions)
	operationsHandler := handlers.NewOperationsHTTPHandler(svc.operations, hub)
	adminHandler := handlers.NewAdminHTTPHandler(svc.dashboard, svc.export, svc.reset)
	cmsHandler := handlers.NewCMSHTTPHandler(svc.cms)

	// --- Public API Group ---
	public := r.Group("/api")
	{
		public.POST("/auth/login", userHandler.Login)

		site := public.Group("/public")
		{
			site.GET("/pages/:slug", cmsHandler.PublicPage)
			site.GET("/faq", cmsHandler.PublicFaq)
			site.GET("/partners", cmsHandler.PublicPartners)
			site.GET("/blog", cmsHandler.PublicBlog)
			site.GET("/blog/:slug", cmsHandler.PublicBlogPost)
			site.GET("/estates", cmsHandler.PublicEstates)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuth(tokens))
	{
		protected.GET("/auth/me", userHandler.Me)
		protected.GET("/dashboard/stats", adminHandler.DashboardStats)

		geo := protected.Group("/geo")
		{
			geo.GET("/provinces", workforceHandler.ListProvinces)
			geo.GET("/provinces/:id/districts", workforceHandler.ListDistricts)
		}

		protected.GET("/workers", workforceHandler.ListWorkers)
		protected.GET("/workers/:id", workforceHandler.GetWorker)
		protected.GET("/agents", workforceHandler.ListAgents)
		protected.GET("/agents/:id", workforceHandler.GetAgent)
		protected.GET("/agents/:id/commissions/summary", commissionsHandler.AgentSummary)
		protected.GET("/clients", workforceHandler.ListClients)
		protected.GET("/clients/:id", workforceHandler.GetClient)

		protected.GET("/loans", ledgerHandler.ListLoans)
		protected.GET("/loans/:id", ledgerHandler.GetLoan)
		protected.GET("/payments", ledgerHandler.ListPayments)

		protected.GET("/commissions", commissionsHandler.ListCommissions)
		protected.GET("/commissions/:id", commissionsHandler.GetCommission)

		protected.GET("/sos", operationsHandler.ListSos)
		protected.GET("/sos/stream", operationsHandler.SosStream)
		protected.GET("/sos/:id", operationsHandler.GetSos)
		protected.GET("/orders", operationsHandler.ListOrders)
		protected.GET("/orders/:id", operationsHandler.GetOrder)
		protected.GET("/documents", operationsHandler.ListDocuments)
		protected.GET("/documents/expiring", operationsHandler.ListExpiringDocuments)

		exports := protected.Group("/export")
		{
			exports.GET("/workers.xlsx", adminHandler.ExportWorkers)
			exports.GET("/loans.xlsx", adminHandler.ExportLoans)
		}

		// Viewers are read-only.
		staff := protected.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleStaff))
		{
			staff.POST("/workers", workforceHandler.CreateWorker)
			staff.PUT("/workers/:id", workforceHandler.UpdateWorker)
			staff.POST("/agents", workforceHandler.CreateAgent)
			staff.PUT("/agents/:id", workforceHandler.UpdateAgent)
			staff.POST("/clients", workforceHandler.CreateClient)
			staff.PUT("/clients/:id", workforceHandler.UpdateClient)

			staff.POST("/loans", ledgerHandler.CreateLoan)
			staff.PUT("/loans/:id/status", ledgerHandler.UpdateLoanStatus)
			staff.POST("/loans/:id/reconcile", ledgerHandler.Reconcile)
			staff.POST("/payments", ledgerHandler.RecordPayment)

			staff.POST("/commissions", commissionsHandler.CreateCommission)
			staff.POST("/commissions/bulk-approve", commissionsHandler.BulkApprove)
			staff.POST("/commissions/:id/approve", commissionsHandler.ApproveCommission)
			staff.POST("/commissions/:id/pay", commissionsHandler.PayCommission)
			staff.POST("/commissions/:id/cancel", commissionsHandler.CancelCommission)

			staff.POST("/sos", operationsHandler.CreateSos)
			staff.PUT("/sos/:id", operationsHandler.UpdateSos)
			staff.POST("/orders", operationsHandler.CreateOrder)
			staff.PUT("/orders/:id", operationsHandler.UpdateOrder)
			staff.POST("/documents", operationsHandler.CreateDocument)
			staff.PUT("/documents/:id", operationsHandler.UpdateDocument)

			content := staff.Group("/admin/cms")
			{
				handlers.RegisterCMSCollection[models.CmsPage](content, "/pages", svc.cms.Pages, "locale")
				handlers.RegisterCMSCollection[models.CmsSection](content, "/sections", svc.cms.Sections, "page_id")
				handlers.RegisterCMSCollection[models.CmsFaq](content, "/faq", svc.cms.Faqs, "locale", "category")
				content.POST("/media/upload", cmsHandler.UploadMedia)
				handlers.RegisterCMSCollection[models.CmsMedia](content, "/media", svc.cms.Media, "mime_type")
				handlers.RegisterCMSCollection[models.CmsPartner](content, "/partners", svc.cms.Partners, "country")
				handlers.RegisterCMSCollection[models.CmsBlogPost](content, "/blog", svc.cms.Blog, "locale", "is_published")
				handlers.RegisterCMSCollection[models.CmsEstate](content, "/estates", svc.cms.Estates, "province")
			}
		}

		adminOnly := protected.Group("", middleware.RequireRole(models.RoleAdmin))
		{
			adminOnly.GET("/users", userHandler.ListUsers)
			adminOnly.GET("/users/:id", userHandler.GetUser)
			adminOnly.POST("/users", userHandler.CreateUser)
			adminOnly.PUT("/users/:id", userHandler.UpdateUser)
			adminOnly.POST("/admin/reset", adminHandler.ResetData)
		}
	}

	r.GET("/health", healthCheckHandler(checker))
	r.GET("/health/detailed", detailedHealthCheckHandler(checker, hub))

	return r, nil
}

func healthCheckHandler(checker *health.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		report := checker.Check(ctx)
		httpStatus := http.StatusOK
		if report.Status == health.StatusUnavailable {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    report.Status,
			"message":   "Server is running",
			"timestamp": report.Timestamp,
		})
	}
}

func detailedHealthCheckHandler(checker *health.Checker, hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		report := checker.Check(ctx)
		c.JSON(http.StatusOK, gin.H{
			"overall_status":  report.Status,
			"services":        report.Components,
			"sos_subscribers": hub.Subscribers(),
			"timestamp":       report.Timestamp,
		})
	}
}

package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/bodegaapp/bodega-api/docs"
	v1 "github.com/bodegaapp/bodega-api/internal/api/handler/v1"
	"github.com/bodegaapp/bodega-api/internal/api/middleware"
	"github.com/bodegaapp/bodega-api/internal/config"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/notification/email"
	"github.com/bodegaapp/bodega-api/internal/notification/whatsapp"
	"github.com/bodegaapp/bodega-api/internal/repository"
	"github.com/bodegaapp/bodega-api/internal/repository/dao"
	"github.com/bodegaapp/bodega-api/internal/service"
)

// Deps are the long lived collaborators shared by the services.
type Deps struct {
	WhatsApp *whatsapp.Service
	Mailer   *email.Service
	Pool     *ants.Pool
	IDs      service.IDGenerator
	Location *time.Location
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	// Credits is shared with the reminder scheduler.
	Credits *service.CreditService
}

type repositories struct {
	stores    *repository.StoreRepository
	plans     *repository.PlanRepository
	users     *repository.UserRepository
	customers *repository.CustomerRepository
	products  *repository.ProductRepository
	sales     *repository.SaleRepository
	credits   *repository.CreditRepository
}

type handlers struct {
	auth      *v1.AuthHandler
	users     *v1.UserHandler
	sales     *v1.SaleHandler
	credits   *v1.CreditHandler
	products  *v1.ProductHandler
	customers *v1.CustomerHandler
	stores    *v1.StoreHandler
	plans     *v1.PlanHandler
	dashboard *v1.DashboardHandler
	legacy    *v1.LegacyHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, deps Deps) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	repos := initRepositories(db)
	userSvc := service.NewUserService(repos.users)
	h := s.initHandlers(repos, userSvc, deps)
	s.MountHandlers(middleware.NewAuthenticator(conf.API.JWTSigningKey, userSvc), h)

	return s
}

func initRepositories(db *gorm.DB) repositories {
	return repositories{
		stores:    repository.NewStoreRepository(dao.NewStoreDAO(db)),
		plans:     repository.NewPlanRepository(dao.NewPlanDAO(db)),
		users:     repository.NewUserRepository(dao.NewUserDAO(db)),
		customers: repository.NewCustomerRepository(dao.NewCustomerDAO(db)),
		products:  repository.NewProductRepository(dao.NewProductDAO(db)),
		sales:     repository.NewSaleRepository(dao.NewSaleDAO(db)),
		credits:   repository.NewCreditRepository(dao.NewCreditDAO(db)),
	}
}

func (s *Server) initHandlers(repos repositories, userSvc *service.UserService, deps Deps) handlers {
	sales := s.Config.Sales

	creditSvc := service.NewCreditService(repos.credits, deps.WhatsApp, deps.Pool, deps.Location)
	s.Credits = creditSvc

	saleSvc := service.NewSaleService(repos.sales, repos.customers, repos.credits, creditSvc, deps.WhatsApp, deps.IDs,
		service.SaleOptions{
			CreditTerm: time.Duration(sales.CreditTermDays) * 24 * time.Hour,
			Location:   deps.Location,
		})

	authSvc := service.NewAuthService(repos.users, repos.stores, repos.plans, deps.Mailer, s.Config.API.PublicURL)
	storeSvc := service.NewStoreService(repos.stores, repos.plans, deps.Mailer, s.Config.API.PublicURL)
	dashboardSvc := service.NewDashboardService(repos.sales, repos.credits, repos.products, sales.LowStockLimit, deps.Location)

	return handlers{
		auth:      v1.NewAuthHandler(s.Config.API, authSvc),
		users:     v1.NewUserHandler(userSvc),
		sales:     v1.NewSaleHandler(saleSvc, deps.Location),
		credits:   v1.NewCreditHandler(creditSvc),
		products:  v1.NewProductHandler(service.NewProductService(repos.products), sales.LowStockLimit),
		customers: v1.NewCustomerHandler(service.NewCustomerService(repos.customers, saleSvc, creditSvc)),
		stores:    v1.NewStoreHandler(storeSvc),
		plans:     v1.NewPlanHandler(service.NewPlanService(repos.plans)),
		dashboard: v1.NewDashboardHandler(dashboardSvc),
		legacy:    v1.NewLegacyHandler(saleSvc, creditSvc, deps.WhatsApp, deps.Location),
	}
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authn *middleware.Authenticator, h handlers) {
	const basePath = "/api/v1"

	// Routes of the original web client, answering {success, ...}.
	legacy := s.Router.Group("/api", authn.VerifyJWT())
	{
		legacy.POST("/sales", h.legacy.HandleSale)
		legacy.POST("/credits", h.legacy.HandleCredits)
		legacy.POST("/whatsapp", h.legacy.HandleWhatsApp)
	}

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/register", h.auth.HandleRegister)
		public.POST("/auth/login", h.auth.HandleLogin)
		public.POST("/auth/admin/login", h.auth.HandleAdminLogin)
		public.POST("/auth/forgot-password", h.auth.HandleForgotPassword)
		public.POST("/auth/reset-password", h.auth.HandleResetPassword)
		public.GET("/plans", h.plans.HandleListActivePlans)
	}

	private := s.Router.Group(basePath, authn.VerifyJWT())
	{
		private.GET("/users/me", h.users.HandleGetMe)
		private.PUT("/auth/password", h.auth.HandleChangePassword)

		private.GET("/dashboard", h.dashboard.HandleDashboard)

		private.GET("/products", h.products.HandleListProducts)
		private.POST("/products", h.products.HandleCreateProduct)
		private.GET("/products/low-stock", h.products.HandleLowStock)
		private.POST("/products/import", h.products.HandleImportProducts)
		private.GET("/products/:productID", h.products.HandleGetProduct)
		private.PUT("/products/:productID", h.products.HandleUpdateProduct)
		private.PATCH("/products/:productID/stock", h.products.HandleAdjustStock)
		private.DELETE("/products/:productID", h.products.HandleDeleteProduct)

		private.GET("/customers", h.customers.HandleListCustomers)
		private.POST("/customers", h.customers.HandleCreateCustomer)
		private.GET("/customers/:customerID", h.customers.HandleGetCustomer)
		private.PUT("/customers/:customerID", h.customers.HandleUpdateCustomer)
		private.DELETE("/customers/:customerID", h.customers.HandleDeleteCustomer)
		private.GET("/customers/:customerID/sales", h.customers.HandleCustomerSales)
		private.GET("/customers/:customerID/credits", h.customers.HandleCustomerCredits)

		private.GET("/sales", h.sales.HandleListSales)
		private.POST("/sales", h.sales.HandleCreateSale)
		private.GET("/sales/:saleID", h.sales.HandleGetSale)
		private.POST("/sales/:saleID/pay", h.sales.HandleMarkSalePaid)
		private.POST("/sales/:saleID/cancel", h.sales.HandleCancelSale)
		private.POST("/sales/:saleID/receipt", h.sales.HandleResendReceipt)

		private.GET("/credits", h.credits.HandleListCredits)
		private.POST("/credits/reminders", h.credits.HandleSendReminders)
		private.GET("/credits/:creditID", h.credits.HandleGetCredit)
		private.POST("/credits/:creditID/payments", h.credits.HandleRegisterPayment)
		private.POST("/credits/:creditID/pay", h.credits.HandleMarkCreditPaid)
		private.POST("/credits/:creditID/reminder", h.credits.HandleSendReminder)
	}

	admin := s.Router.Group(basePath+"/admin", authn.VerifyJWT(), middleware.RequireBackOffice())
	{
		admin.GET("/stores", h.stores.HandleListStores)
		admin.POST("/stores", h.stores.HandleCreateStore)
		admin.GET("/stores/:storeID", h.stores.HandleGetStore)
		admin.PUT("/stores/:storeID", h.stores.HandleUpdateStore)
		admin.PATCH("/stores/:storeID/status", h.stores.HandleUpdateStoreStatus)

		admin.GET("/plans", h.plans.HandleListPlans)
		admin.POST("/plans", h.plans.HandleCreatePlan)
		admin.GET("/plans/:planID", h.plans.HandleGetPlan)
		admin.PUT("/plans/:planID", h.plans.HandleUpdatePlan)
		admin.POST("/plans/:planID/toggle", h.plans.HandleTogglePlan)
		admin.DELETE("/plans/:planID", h.plans.HandleDeletePlan)

		users := admin.Group("/users", middleware.RequireRoles(domain.RoleAdmin))
		users.GET("", h.users.HandleListUsers)
		users.POST("", h.users.HandleCreateUser)
		users.POST("/:userID/toggle", h.users.HandleToggleUserStatus)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "BodegaApp API"
	docs.SwaggerInfo.Description = "Sales, credits and WhatsApp receipts for neighbourhood stores."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"hr-portal/internal/controllers"
	"hr-portal/internal/listeners"
	"hr-portal/internal/repositories"
	"hr-portal/internal/services"
	"hr-portal/pkg/config"
	"hr-portal/pkg/eventbus"
	"hr-portal/pkg/mailer"
	"hr-portal/pkg/middleware"
	"hr-portal/pkg/service"
	"hr-portal/pkg/websocket"
)

// InitRouter собирает весь граф зависимостей и регистрирует маршруты.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	hub *websocket.Hub,
	bus *eventbus.Bus,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	txManager := repositories.NewTxManager(dbConn)
	mailerService := mailer.NewService(cfg.Mail, logger)

	// --- РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, logger)
	employmentRepo := repositories.NewEmploymentRepository(dbConn, logger)
	departmentRepo := repositories.NewDepartmentRepository(dbConn, logger)
	teamRepo := repositories.NewTeamRepository(dbConn, logger)
	orgRepo := repositories.NewOrganizationRepository(dbConn, logger)
	tokenRepo := repositories.NewTokenRepository(dbConn, logger)
	policyRepo := repositories.NewWorkPolicyRepository(dbConn, logger)
	notificationRepo := repositories.NewNotificationRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- СЕРВИСЫ ---
	tokenService := services.NewTokenService(tokenRepo, cfg, logger)
	authService := services.NewAuthService(userRepo, cacheRepo, tokenService, txManager, mailerService, logger, cfg)
	userService := services.NewUserService(userRepo, employmentRepo, departmentRepo, orgRepo, tokenService, txManager, mailerService, bus, logger)
	orgService := services.NewOrganizationService(orgRepo, userRepo, employmentRepo, policyRepo, tokenService, txManager, mailerService, logger)
	departmentService := services.NewDepartmentService(departmentRepo, teamRepo, userRepo, txManager, logger)
	policyService := services.NewWorkPolicyService(policyRepo, userRepo, bus, logger)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, logger)
	unlockService := services.NewUnlockService(userRepo, tokenService, txManager, logger)

	// --- СЛУШАТЕЛИ СОБЫТИЙ ---
	notificationListener := listeners.NewNotificationListener(notificationService, hub, logger)
	notificationListener.Register(bus)

	// --- КОНТРОЛЛЕРЫ ---
	authCtrl := controllers.NewAuthController(authService, jwtSvc, logger)
	userCtrl := controllers.NewUserController(userService, logger)
	orgCtrl := controllers.NewOrganizationController(orgService, logger)
	departmentCtrl := controllers.NewDepartmentController(departmentService, logger)
	policyCtrl := controllers.NewWorkPolicyController(policyService, logger)
	notificationCtrl := controllers.NewNotificationController(notificationService, logger)
	unlockCtrl := controllers.NewUnlockController(unlockService, logger)
	wsCtrl := controllers.NewWebSocketController(hub, jwtSvc, logger)

	// --- МАРШРУТЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authCtrl)
	runOrganizationRouter(secureGroup, orgCtrl)
	runUserRouter(secureGroup, userCtrl)
	runDepartmentRouter(secureGroup, departmentCtrl)
	runWorkPolicyRouter(secureGroup, policyCtrl)
	runNotificationRouter(secureGroup, notificationCtrl)
	runUnlockRouter(api, secureGroup, unlockCtrl)

	e.GET("/ws", wsCtrl.ServeWs)

	logger.Info("InitRouter: создание маршрутов завершено")
}

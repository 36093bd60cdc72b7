package main

import (
	"log"
	"os"
	"time"

	"cautela-backend/controllers"
	"cautela-backend/models"
	"cautela-backend/routes"
	"cautela-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Inicialização do banco de dados
	db, err := models.InitDB()
	if err != nil {
		log.Fatal("Falha ao conectar no banco de dados:", err)
	}

	// Automigração
	db.AutoMigrate(&models.User{}, &models.MaterialItem{}, &models.Cautela{}, &models.Reservation{}, &models.AuditEvent{})

	// Conta padrão do fiel do material
	initDefaultUsers(db)

	// Catálogo básico de material da unidade
	initDefaultCatalog(db)

	// Criação do app Fiber
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"code":    code,
			})
		},
	})

	// Middleware
	app.Use(logger.New())

	// Configuração de CORS
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Hub de notificações (sink fire-and-forget)
	hub := services.NewNotifyHub()
	go hub.Run()

	// Inicialização dos serviços
	ledgerService := services.NewLedgerService(db)
	reservationService := services.NewReservationService(db)
	auditService := services.NewAuditService(db)
	workflowService := services.NewWorkflowService(db, reservationService, auditService, hub)
	queryService := services.NewQueryService(db)

	// Inicialização dos controllers
	materialController := controllers.NewMaterialController(db, ledgerService, queryService)
	cautelaController := controllers.NewCautelaController(db, workflowService, auditService, queryService)
	reportController := controllers.NewReportController(queryService)

	// Configuração das rotas
	routes.SetupMaterialRoutes(app, materialController)
	routes.SetupCautelaRoutes(app, cautelaController)
	routes.SetupReportRoutes(app, reportController)

	// Rota WebSocket de notificações
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.HandleWebSocket(c)
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "Cautela Backend em execução",
			"timestamp": time.Now().Unix(),
		})
	})

	// Inicialização do servidor
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Servidor iniciando na porta %s", port)
	log.Fatal(app.Listen(":" + port))
}

// initDefaultUsers cria a conta padrão do fiel do material quando o
// banco está vazio
func initDefaultUsers(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleFiel).Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("DEFAULT_FIEL_PASSWORD")
	if password == "" {
		password = "trocar-no-primeiro-acesso"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Erro ao gerar hash da senha padrão: %v", err)
		return
	}

	fiel := models.User{
		Name:         "Fiel do Material",
		Email:        "fiel@unidade.mil.br",
		PasswordHash: string(hash),
		Rank:         "1º Sgt",
		Sector:       "Aprovisionamento",
		Role:         models.RoleFiel,
		IsActive:     true,
	}
	if err := db.Create(&fiel).Error; err != nil {
		log.Printf("Erro ao criar conta padrão do fiel: %v", err)
		return
	}
	log.Println("Conta padrão do fiel do material criada")
}

// initDefaultCatalog inicializa o catálogo básico de material
func initDefaultCatalog(db *gorm.DB) {
	defaultCatalog := []models.MaterialItem{
		{Name: "Capacete balístico", Category: "Equipamento Individual", Location: "Depósito A - Prateleira 1", MinStock: 5, IsActive: true},
		{Name: "Colete tático", Category: "Equipamento Individual", Location: "Depósito A - Prateleira 2", MinStock: 5, IsActive: true},
		{Name: "Cantil", Category: "Equipamento Individual", Location: "Depósito A - Prateleira 3", MinStock: 10, IsActive: true},
		{Name: "Mochila de campanha", Category: "Equipamento Individual", Location: "Depósito A - Prateleira 4", MinStock: 5, IsActive: true},
		{Name: "Lanterna tática", Category: "Iluminação", Location: "Depósito B - Armário 1", MinStock: 3, IsActive: true},
		{Name: "Rádio HT", Category: "Comunicações", Location: "Depósito B - Armário 2", MinStock: 2, IsActive: true},
		{Name: "Barraca de campanha", Category: "Acampamento", Location: "Depósito C", MinStock: 2, IsActive: true},
		{Name: "Pá", Category: "Ferramentas", Location: "Depósito C - Baia 1", MinStock: 4, IsActive: true},
		{Name: "Picareta", Category: "Ferramentas", Location: "Depósito C - Baia 1", MinStock: 4, IsActive: true},
		{Name: "Corda de rapel", Category: "Montanhismo", Location: "Depósito C - Baia 2", MinStock: 2, IsActive: true},
	}

	var count int64
	db.Model(&models.MaterialItem{}).Count(&count)

	if count == 0 {
		log.Println("Inicializando catálogo básico de material...")
		for _, item := range defaultCatalog {
			if err := db.Create(&item).Error; err != nil {
				log.Printf("Erro ao criar material '%s': %v", item.Name, err)
			}
		}
		log.Println("Catálogo básico inicializado")
	} else {
		log.Printf("Catálogo já existente (%d materiais)", count)
	}
}

package main

import (
	"cautela-backend/models"
	"cautela-backend/services"
	"cautela-backend/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB cria uma base de testes em memória. Uma única conexão
// aberta: o SQLite em memória não compartilha o banco entre conexões
// e os testes de concorrência dependem de um ponto de serialização.
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("Falha ao conectar na base de testes")
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic("Falha ao obter a conexão da base de testes")
	}
	sqlDB.SetMaxOpenConns(1)

	db.AutoMigrate(
		&models.User{},
		&models.MaterialItem{},
		&models.Cautela{},
		&models.Reservation{},
		&models.AuditEvent{},
	)
	return db
}

// testServices agrupa os serviços montados sobre a base de testes
type testServices struct {
	DB           *gorm.DB
	Ledger       *services.LedgerService
	Reservations *services.ReservationService
	Audit        *services.AuditService
	Workflow     *services.WorkflowService
	Query        *services.QueryService
}

// setupTestServices monta os serviços do núcleo sem hub de notificações
func setupTestServices(db *gorm.DB) *testServices {
	ledger := services.NewLedgerService(db)
	reservations := services.NewReservationService(db)
	audit := services.NewAuditService(db)
	workflow := services.NewWorkflowService(db, reservations, audit, nil)
	query := services.NewQueryService(db)
	return &testServices{
		DB:           db,
		Ledger:       ledger,
		Reservations: reservations,
		Audit:        audit,
		Workflow:     workflow,
		Query:        query,
	}
}

// createTestUsers cria um fiel e dois militares de teste
func createTestUsers(db *gorm.DB) (fielID, militar1ID, militar2ID uint) {
	fiel := models.User{
		Name:         "Sgt Fiel",
		Email:        "fiel@teste.mil.br",
		PasswordHash: "hash",
		Rank:         "1º Sgt",
		Sector:       "Aprovisionamento",
		Role:         models.RoleFiel,
		IsActive:     true,
	}
	militar1 := models.User{
		Name:         "Sd Silva",
		Email:        "silva@teste.mil.br",
		PasswordHash: "hash",
		Rank:         "Sd",
		Sector:       "1ª Cia",
		Role:         models.RoleMilitar,
		IsActive:     true,
	}
	militar2 := models.User{
		Name:         "Cb Souza",
		Email:        "souza@teste.mil.br",
		PasswordHash: "hash",
		Rank:         "Cb",
		Sector:       "2ª Cia",
		Role:         models.RoleMilitar,
		IsActive:     true,
	}

	db.Create(&fiel)
	db.Create(&militar1)
	db.Create(&militar2)

	return fiel.ID, militar1.ID, militar2.ID
}

// createTestMaterial cadastra um material com o estoque inicial informado
func createTestMaterial(db *gorm.DB, name string, received int) uint {
	material := models.MaterialItem{
		Name:          name,
		Category:      "Equipamento Individual",
		Location:      "Depósito A",
		MinStock:      1,
		ReceivedTotal: received,
		IsActive:      true,
	}
	db.Create(&material)
	return material.ID
}

// fielActor monta o ator de teste com perfil de fiel
func fielActor(id uint) services.Actor {
	return services.Actor{ID: id, Role: models.RoleFiel, Sector: "Aprovisionamento"}
}

// militarActor monta o ator de teste com perfil de militar comum
func militarActor(id uint) services.Actor {
	return services.Actor{ID: id, Role: models.RoleMilitar, Sector: "1ª Cia"}
}

// generateTestJWT cria um token de teste para o usuário
func generateTestJWT(userID uint, role string) string {
	token, _ := utils.GenerateJWT(userID, "teste@teste.mil.br", role, "1ª Cia")
	return token
}

package models

import (
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Papéis de usuário reconhecidos pelo sistema
const (
	RoleMilitar = "militar" // militar comum, pode solicitar cautelas
	RoleFiel    = "fiel"    // fiel do material, gerencia estoque e aprovações
)

// User representa um militar cadastrado no sistema
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;size:255"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // Hash nunca exposto no JSON
	Rank         string    `json:"rank" gorm:"size:50"`                   // Posto/graduação (ex: "3º Sgt")
	Sector       string    `json:"sector" gorm:"size:100"`                // Setor/seção (ex: "Aprovisionamento")
	Role         string    `json:"role" gorm:"size:20;default:'militar'"` // 'militar' ou 'fiel'
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InitDB inicializa a conexão com o banco de dados
func InitDB() (*gorm.DB, error) {
	// Verifica a variável de ambiente para escolher o banco
	databaseURL := os.Getenv("DATABASE_URL")

	if databaseURL != "" {
		// PostgreSQL para produção
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	// SQLite para desenvolvimento
	db, err := gorm.Open(sqlite.Open("cautela.db"), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// BeforeCreate hook para definir o horário de criação
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook para atualizar o horário de modificação
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

package infrastructure

import (
	"github.com/google/uuid"
)

// GenerateUUID gera identificadores para mensagens e correlação.
func GenerateUUID() string {
	return uuid.New().String()
}

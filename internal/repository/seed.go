package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spec-kit/genius-car/internal/domain"
)

// LoadServicesFile reads a JSON array of service documents. Each entry must
// carry its UUID under "_id".
func LoadServicesFile(path string) ([]domain.Service, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var services []domain.Service
	if err := json.Unmarshal(raw, &services); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i := range services {
		if _, err := parseID(services[i].ID); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
	}
	return services, nil
}

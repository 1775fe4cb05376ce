package repository

import (
	"context"
	"fmt"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository/base"
)

// PersonRepository reads the people table kept in sync by the personnel service.
type PersonRepository struct {
	*base.Repository
}

func NewPersonRepository(db base.DBTX) *PersonRepository {
	return &PersonRepository{Repository: base.NewRepository(db)}
}

// GetByID returns nil when the person is unknown.
func (r *PersonRepository) GetByID(ctx context.Context, id int64) (*model.Person, error) {
	query := `
		SELECT id, name, category, last_booking_date
		FROM people
		WHERE id = $1
	`

	var person model.Person
	err := r.QueryRow(ctx, query, id).Scan(
		&person.ID,
		&person.Name,
		&person.Category,
		&person.LastBookingDate,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get person by id: %w", err)
	}

	return &person, nil
}

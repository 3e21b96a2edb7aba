package repository

import (
	"fmt"

	"github.com/yourusername/smartslip/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Provider  Provider
	Proposals ProposalWriter
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Provider:  NewPostgresProvider(db),
		Proposals: NewPostgresProposalRepository(db),
	}, nil
}

// Composite assembles a Provider from independent readers, so quotes can come
// from a live feed while results and closing lines come from the database.
type Composite struct {
	QuoteReader
	ResultReader
	ClosingReader
}

// WithQuotes returns a provider that reads quotes from quotes and everything
// else from base
func WithQuotes(base Provider, quotes QuoteReader) Provider {
	return &Composite{
		QuoteReader:   quotes,
		ResultReader:  base,
		ClosingReader: base,
	}
}

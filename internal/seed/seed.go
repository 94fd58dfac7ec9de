// Package seed loads YAML ledger fixtures and replays them through a ledger.
//
// A seed file lists owners in registration order, each with the purchases to
// replay against their card:
//
//	owners:
//	  - name: Jon
//	    email: jon@example.com
//	    purchases:
//	      - pence: 2300
//	      - points: 10
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/loyalty-api/internal/domain"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPurchase is returned when a purchase sets neither or both of
// pence and points.
var ErrInvalidPurchase = errors.New("purchase must set exactly one of pence or points")

// File is a parsed seed file.
type File struct {
	Owners []Owner `yaml:"owners"`
}

// Owner is one owner to register, with the purchases to replay.
type Owner struct {
	Name      string     `yaml:"name"`
	Email     string     `yaml:"email"`
	Purchases []Purchase `yaml:"purchases"`
}

// Purchase is a money purchase when Pence is set and a points purchase when
// Points is set.
type Purchase struct {
	Pence  *int `yaml:"pence"`
	Points *int `yaml:"points"`
}

// Ledger is the subset of ledger operations a seed file drives.
type Ledger interface {
	RegisterOwner(ctx context.Context, name, email string) (domain.Card, error)
	ProcessMoneyPurchase(ctx context.Context, email string, pence int) (domain.Card, error)
	ProcessPointsPurchase(ctx context.Context, email string, points int) (domain.Card, error)
}

// Load reads and parses the seed file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	file, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return file, nil
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("parsing seed: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks the shape of every purchase. Owner details and amounts are
// left to the ledger.
func (f *File) Validate() error {
	for i, owner := range f.Owners {
		for j, p := range owner.Purchases {
			if (p.Pence == nil) == (p.Points == nil) {
				return fmt.Errorf("owner %d purchase %d: %w", i, j, ErrInvalidPurchase)
			}
		}
	}
	return nil
}

// Result counts what Apply replayed.
type Result struct {
	Owners    int
	Purchases int
}

// Apply registers every owner in file order and replays their purchases.
// It stops at the first failure; the error names the owner index and, for
// purchases, the purchase index, and wraps the ledger error.
func (f *File) Apply(ctx context.Context, ledger Ledger) (Result, error) {
	var res Result
	if err := f.Validate(); err != nil {
		return res, err
	}

	for i, owner := range f.Owners {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if _, err := ledger.RegisterOwner(ctx, owner.Name, owner.Email); err != nil {
			return res, fmt.Errorf("owner %d: %w", i, err)
		}
		res.Owners++

		for j, p := range owner.Purchases {
			var err error
			if p.Pence != nil {
				_, err = ledger.ProcessMoneyPurchase(ctx, owner.Email, *p.Pence)
			} else {
				_, err = ledger.ProcessPointsPurchase(ctx, owner.Email, *p.Points)
			}
			if err != nil {
				return res, fmt.Errorf("owner %d purchase %d: %w", i, j, err)
			}
			res.Purchases++
		}
	}
	return res, nil
}

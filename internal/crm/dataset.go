package crm

import (
	"context"
	"fmt"
	"time"

	"sales-request-api/internal/entity"
)

// Wire shapes of the persons/products dataset endpoints. The upstream proxy
// normalizes Pipedrive custom fields into mine_group / mine_name before the
// payload reaches us, so the schema here is fully tagged and anything that
// does not fit is rejected at decode time.

type personRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	JobTitle  string `json:"job_title"`
	MineGroup string `json:"mine_group"`
	MineName  string `json:"mine_name"`
}

type personsResponse struct {
	Success bool           `json:"success"`
	Data    []personRecord `json:"data"`
	Error   string         `json:"error"`
}

type productRecord struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Code             string  `json:"code"`
	Category         string  `json:"category"`
	Price            float64 `json:"price"`
	ShortDescription string  `json:"short_description"`
}

type productsResponse struct {
	Success bool            `json:"success"`
	Data    []productRecord `json:"data"`
	Error   string          `json:"error"`
}

// FetchContacts pulls the person dataset and folds it into the hierarchical
// mine group -> mine name -> persons lookup. Persons without complete mine
// information are dropped: they could never become a valid request contact.
func (c *PipedriveClient) FetchContacts(ctx context.Context) (*entity.ContactsCatalog, error) {
	var out personsResponse
	if err := c.get(ctx, "/persons", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("CRM persons fetch rejected: %s", out.Error)
	}

	groups := make(map[string]map[string][]entity.CatalogPerson)
	for _, p := range out.Data {
		if p.MineGroup == "" || p.MineName == "" {
			continue
		}
		if groups[p.MineGroup] == nil {
			groups[p.MineGroup] = make(map[string][]entity.CatalogPerson)
		}
		groups[p.MineGroup][p.MineName] = append(groups[p.MineGroup][p.MineName], entity.CatalogPerson{
			PersonId:  p.ID,
			Name:      p.Name,
			MineGroup: p.MineGroup,
			MineName:  p.MineName,
			Email:     p.Email,
			Phone:     p.Phone,
			JobTitle:  p.JobTitle,
		})
	}

	return &entity.ContactsCatalog{
		Groups:    groups,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// FetchProducts pulls the product dataset grouped by category.
func (c *PipedriveClient) FetchProducts(ctx context.Context) (*entity.ProductsCatalog, error) {
	var out productsResponse
	if err := c.get(ctx, "/products", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("CRM products fetch rejected: %s", out.Error)
	}

	categories := make(map[string][]entity.CatalogProduct)
	for _, p := range out.Data {
		category := p.Category
		if category == "" {
			category = "Uncategorised"
		}
		categories[category] = append(categories[category], entity.CatalogProduct{
			ProductId:        p.ID,
			Name:             p.Name,
			Code:             p.Code,
			Category:         category,
			Price:            p.Price,
			ShortDescription: p.ShortDescription,
		})
	}

	return &entity.ProductsCatalog{
		Categories: categories,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

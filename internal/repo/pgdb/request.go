package pgdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"sales-request-api/internal/common"
	"sales-request-api/internal/entity"
	"sales-request-api/internal/repo/repo_errors"
	"sales-request-api/pkg/postgres"
)

type RequestRepo struct {
	*postgres.Postgres
}

func NewRequestRepo(pgdb *postgres.Postgres) *RequestRepo {
	return &RequestRepo{pgdb}
}

const requestColumns = "request.id, request.request_code, request.status, " +
	"request.salesperson_first_name, request.salesperson_selection, request.contact, " +
	"request.comment, request.pipedrive_deal_id, request.created_at, request.updated_at"

// CreateRequest inserts a new draft. The QR code comes from the
// request_code_seq default inside the same statement, so concurrent creations
// can never observe the same counter value.
func (r *RequestRepo) CreateRequest(ctx context.Context, input *entity.CreateRequestInput) (uuid.UUID, error) {
	createRequestSql, args, _ := r.SqlBuilder.
		Insert("request").
		Columns("status", "salesperson_first_name", "salesperson_selection").
		Values(input.Status, input.SalespersonFirstName, input.SalespersonSelection).
		Suffix("RETURNING id").
		ToSql()

	var requestId uuid.UUID
	err := r.Database.QueryRowContext(ctx, createRequestSql, args...).Scan(&requestId)
	if err != nil {
		return uuid.Nil, err
	}

	return requestId, nil
}

func (r *RequestRepo) GetRequestById(ctx context.Context, id string) (*entity.Request, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getRequestSql, args, _ := r.SqlBuilder.
		Select(requestColumns).
		From("request").
		Where("request.id = ?", uuidForm).
		ToSql()

	request, err := r.scanRequest(r.Database.QueryRowContext(ctx, getRequestSql, args...))
	if err != nil {
		return nil, err
	}

	items, err := r.getLineItems(ctx, request.Id)
	if err != nil {
		return nil, err
	}
	request.LineItems = items

	return request, nil
}

func (r *RequestRepo) ListRequests(ctx context.Context, pg *entity.PaginationInput) ([]entity.Request, error) {
	listSql, args, _ := r.SqlBuilder.
		Select(requestColumns).
		From("request").
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, listSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]entity.Request, 0)
	for rows.Next() {
		request, err := r.scanRequest(rows)
		if err != nil {
			return requests, err
		}
		requests = append(requests, *request)
	}
	if err = rows.Err(); err != nil {
		return requests, err
	}

	for i := range requests {
		items, err := r.getLineItems(ctx, requests[i].Id)
		if err != nil {
			return requests, err
		}
		requests[i].LineItems = items
	}

	return requests, nil
}

func (r *RequestRepo) UpdateSalesperson(ctx context.Context, id string, firstName string, selection string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"salesperson_first_name": firstName,
		"salesperson_selection":  selection,
	})
}

func (r *RequestRepo) UpdateContact(ctx context.Context, id string, contact *entity.Contact) error {
	var payload interface{}
	if contact != nil {
		raw, err := json.Marshal(contact)
		if err != nil {
			return err
		}
		payload = raw
	}

	return r.updateFields(ctx, id, map[string]interface{}{"contact": payload})
}

func (r *RequestRepo) UpdateComment(ctx context.Context, id string, comment string) error {
	return r.updateFields(ctx, id, map[string]interface{}{"comment": comment})
}

func (r *RequestRepo) AddLineItem(ctx context.Context, id string, item *entity.LineItem) (int, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return 0, repo_errors.ErrNotFound
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	addItemSql, args, _ := r.SqlBuilder.
		Insert("request_line_item").
		Columns("request_id", "position", "product_id", "name", "code", "category",
			"quantity", "unit_price", "total_price", "short_description").
		Values(uuidForm,
			squirrel.Expr("(select coalesce(max(position), 0) + 1 from request_line_item where request_id = ?)", uuidForm),
			item.ProductId, item.Name, item.Code, item.Category,
			item.Quantity, item.UnitPrice, item.TotalPrice, item.ShortDescription).
		Suffix("RETURNING id").
		RunWith(tx).
		ToSql()

	var lineItemId int
	err = tx.QueryRow(addItemSql, args...).Scan(&lineItemId)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return 0, e
		}

		return 0, err
	}

	if err = r.touch(tx, uuidForm); err != nil {
		if e := tx.Rollback(); e != nil {
			return 0, e
		}

		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return lineItemId, nil
}

func (r *RequestRepo) ReplaceLineItems(ctx context.Context, id string, items []entity.LineItem) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	deleteSql, args, _ := r.SqlBuilder.
		Delete("request_line_item").
		Where("request_id = ?", uuidForm).
		RunWith(tx).
		ToSql()

	if _, err = tx.Exec(deleteSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	for i := range items {
		item := &items[i]
		insertSql, args, _ := r.SqlBuilder.
			Insert("request_line_item").
			Columns("request_id", "position", "product_id", "name", "code", "category",
				"quantity", "unit_price", "total_price", "short_description").
			Values(uuidForm, i+1, item.ProductId, item.Name, item.Code, item.Category,
				item.Quantity, item.UnitPrice, item.TotalPrice, item.ShortDescription).
			RunWith(tx).
			ToSql()

		if _, err = tx.Exec(insertSql, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}

			return err
		}
	}

	if err = r.touch(tx, uuidForm); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	return tx.Commit()
}

func (r *RequestRepo) RemoveLineItem(ctx context.Context, id string, lineItemId int) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	deleteSql, args, _ := r.SqlBuilder.
		Delete("request_line_item").
		Where("request_id = ?", uuidForm).
		Where("id = ?", lineItemId).
		RunWith(tx).
		ToSql()

	result, err := tx.Exec(deleteSql, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return repo_errors.ErrNotFound
	}

	if err = r.touch(tx, uuidForm); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	return tx.Commit()
}

// MarkSubmitted applies the terminal transition: status and deal id change in
// one statement, and an already-submitted row is never rewritten.
func (r *RequestRepo) MarkSubmitted(ctx context.Context, id string, dealId int) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	markSql, args, _ := r.SqlBuilder.
		Update("request").
		Set("status", common.Submitted).
		Set("pipedrive_deal_id", dealId).
		Set("updated_at", squirrel.Expr("now()")).
		Where("id = ?", uuidForm).
		Where("status <> ?", common.Submitted).
		ToSql()

	result, err := r.Database.ExecContext(ctx, markSql, args...)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}

func (r *RequestRepo) MarkFailed(ctx context.Context, id string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	markSql, args, _ := r.SqlBuilder.
		Update("request").
		Set("status", common.Failed).
		Set("pipedrive_deal_id", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where("id = ?", uuidForm).
		Where("status <> ?", common.Submitted).
		ToSql()

	result, err := r.Database.ExecContext(ctx, markSql, args...)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}

func (r *RequestRepo) DeleteRequest(ctx context.Context, id string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	// line items go with the request via ON DELETE CASCADE
	deleteSql, args, _ := r.SqlBuilder.
		Delete("request").
		Where("id = ?", uuidForm).
		ToSql()

	result, err := r.Database.ExecContext(ctx, deleteSql, args...)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *RequestRepo) scanRequest(row rowScanner) (*entity.Request, error) {
	var request entity.Request
	var contactRaw []byte
	var createdAt, updatedAt time.Time

	err := row.Scan(&request.Id, &request.RequestId, &request.Status,
		&request.SalespersonFirstName, &request.SalespersonSelection, &contactRaw,
		&request.Comment, &request.PipedriveDealId, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	if len(contactRaw) > 0 {
		var contact entity.Contact
		if err := json.Unmarshal(contactRaw, &contact); err != nil {
			return nil, err
		}
		request.Contact = &contact
	}

	request.CreatedAt = createdAt.Format(time.RFC3339)
	request.UpdatedAt = updatedAt.Format(time.RFC3339)

	return &request, nil
}

func (r *RequestRepo) getLineItems(ctx context.Context, requestId uuid.UUID) ([]entity.LineItem, error) {
	getItemsSql, args, _ := r.SqlBuilder.
		Select("id, product_id, name, code, category, quantity, unit_price, total_price, short_description").
		From("request_line_item").
		Where("request_id = ?", requestId).
		OrderBy("position ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getItemsSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]entity.LineItem, 0)
	for rows.Next() {
		var item entity.LineItem
		if err := rows.Scan(&item.Id, &item.ProductId, &item.Name, &item.Code, &item.Category,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.ShortDescription); err != nil {
			return items, err
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return items, err
	}

	return items, nil
}

func (r *RequestRepo) updateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	builder := r.SqlBuilder.
		Update("request").
		Set("updated_at", squirrel.Expr("now()")).
		Where("id = ?", uuidForm)
	for column, value := range fields {
		builder = builder.Set(column, value)
	}

	updateSql, args, _ := builder.ToSql()

	result, err := r.Database.ExecContext(ctx, updateSql, args...)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}

func (r *RequestRepo) touch(tx *sql.Tx, id uuid.UUID) error {
	touchSql, args, _ := r.SqlBuilder.
		Update("request").
		Set("updated_at", squirrel.Expr("now()")).
		Where("id = ?", id).
		RunWith(tx).
		ToSql()

	_, err := tx.Exec(touchSql, args...)

	return err
}

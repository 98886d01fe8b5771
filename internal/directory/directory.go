// Package directory supplies the read-only reference lists (employees,
// vendors, asset categories) the entry workflows pick from. The draft core
// only depends on the Provider interface; the data itself belongs to an
// external directory service.
package directory

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"ledgerdesk/internal/domain"
)

// Provider is the injected lookup interface.
type Provider interface {
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	ListCategories(ctx context.Context) ([]domain.AssetCategory, error)
}

// SQL reads the directory tables of the workspace database.
type SQL struct {
	DB *sql.DB
}

func (s SQL) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id,name,department,base_salary FROM employees ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Employee
	for rows.Next() {
		var e domain.Employee
		var department sql.NullString
		var salary string
		if err := rows.Scan(&e.ID, &e.Name, &department, &salary); err != nil {
			return nil, err
		}
		if department.Valid {
			e.Department = department.String
		}
		e.BaseSalary, err = decimal.NewFromString(salary)
		if err != nil {
			e.BaseSalary = decimal.Zero
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s SQL) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id,name,contact FROM vendors ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Vendor
	for rows.Next() {
		var v domain.Vendor
		var contact sql.NullString
		if err := rows.Scan(&v.ID, &v.Name, &contact); err != nil {
			return nil, err
		}
		if contact.Valid {
			v.Contact = contact.String
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s SQL) ListCategories(ctx context.Context) ([]domain.AssetCategory, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id,name,default_life_years,default_method FROM asset_categories ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.AssetCategory
	for rows.Next() {
		var c domain.AssetCategory
		var method sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.DefaultLifeYears, &method); err != nil {
			return nil, err
		}
		if method.Valid {
			c.DefaultMethod = domain.Method(method.String)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Static serves fixed in-memory lists. Used by tests and anywhere no
// workspace database exists.
type Static struct {
	Employees  []domain.Employee
	Vendors    []domain.Vendor
	Categories []domain.AssetCategory
}

func (s Static) ListEmployees(context.Context) ([]domain.Employee, error) {
	return append([]domain.Employee(nil), s.Employees...), nil
}

func (s Static) ListVendors(context.Context) ([]domain.Vendor, error) {
	return append([]domain.Vendor(nil), s.Vendors...), nil
}

func (s Static) ListCategories(context.Context) ([]domain.AssetCategory, error) {
	return append([]domain.AssetCategory(nil), s.Categories...), nil
}

// Fixture returns a small static directory for tests.
func Fixture() Static {
	return Static{
		Employees: []domain.Employee{
			{ID: "emp-1", Name: "Test Employee", Department: "QA", BaseSalary: decimal.NewFromInt(5000)},
		},
		Vendors: []domain.Vendor{
			{ID: "ven-1", Name: "Test Vendor"},
		},
		Categories: []domain.AssetCategory{
			{ID: "cat-1", Name: "Test Category", DefaultLifeYears: 3, DefaultMethod: domain.MethodStraightLine},
		},
	}
}

package catalogRepo

import (
	"context"

	"github.com/primego-bg/sites-by-appointments/models"
)

// CatalogRepository reads the business/employee/location/service records the
// availability and booking paths resolve against. CRUD of these records
// belongs to the admin surface and is not part of this repository.
//
// Lookups return (nil, nil) when no matching active record exists; callers
// translate that into a notFound error.
type CatalogRepository interface {
	GetBusinessByID(ctx context.Context, id string) (*models.Business, error)
	GetBusinessByURLPostfix(ctx context.Context, postfix string) (*models.Business, error)
	GetEmployeeByID(ctx context.Context, id string) (*models.Employee, error)
	GetEmployeeBySubCalendarID(ctx context.Context, subCalendarID string) (*models.Employee, error)
	GetServiceByID(ctx context.Context, id string) (*models.Service, error)
	// GetLocationForEmployee resolves the location whose employee list
	// contains the given employee, or (nil, nil) when the employee has no
	// location context.
	GetLocationForEmployee(ctx context.Context, employeeID string) (*models.Location, error)
}

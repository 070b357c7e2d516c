package catalogRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/primego-bg/sites-by-appointments/database"
	"github.com/primego-bg/sites-by-appointments/models"
)

type mongoCatalogRepo struct {
	businesses *mongo.Collection
	employees  *mongo.Collection
	locations  *mongo.Collection
	services   *mongo.Collection
}

// NewMongoCatalogRepo returns a CatalogRepository over the catalog
// collections.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.DB()
	return &mongoCatalogRepo{
		businesses: db.Collection("businesses"),
		employees:  db.Collection("employees"),
		locations:  db.Collection("locations"),
		services:   db.Collection("services"),
	}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Soft-deleted records never resolve.
func notDeleted(filter bson.M) bson.M {
	filter["status"] = bson.M{"$ne": models.StatusDeleted}
	return filter
}

func (r *mongoCatalogRepo) GetBusinessByID(ctx context.Context, id string) (*models.Business, error) {
	return findOne[models.Business](ctx, r.businesses, notDeleted(bson.M{"id": id}))
}

func (r *mongoCatalogRepo) GetBusinessByURLPostfix(ctx context.Context, postfix string) (*models.Business, error) {
	return findOne[models.Business](ctx, r.businesses, notDeleted(bson.M{"urlPostfix": postfix}))
}

func (r *mongoCatalogRepo) GetEmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	return findOne[models.Employee](ctx, r.employees, notDeleted(bson.M{"id": id}))
}

func (r *mongoCatalogRepo) GetEmployeeBySubCalendarID(ctx context.Context, subCalendarID string) (*models.Employee, error) {
	return findOne[models.Employee](ctx, r.employees, notDeleted(bson.M{"subCalendarId": subCalendarID}))
}

func (r *mongoCatalogRepo) GetServiceByID(ctx context.Context, id string) (*models.Service, error) {
	return findOne[models.Service](ctx, r.services, notDeleted(bson.M{"id": id}))
}

func (r *mongoCatalogRepo) GetLocationForEmployee(ctx context.Context, employeeID string) (*models.Location, error) {
	return findOne[models.Location](ctx, r.locations, notDeleted(bson.M{"employees": employeeID}))
}

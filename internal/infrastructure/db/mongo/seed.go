package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
)

// voivodeships maps each region to its capital cities. Region ids are the
// position in this list, city ids are region id * 100 + position.
var voivodeships = []struct {
	name   string
	cities []string
}{
	{"dolnośląskie", []string{"Wrocław"}},
	{"kujawsko-pomorskie", []string{"Bydgoszcz", "Toruń"}},
	{"lubelskie", []string{"Lublin"}},
	{"lubuskie", []string{"Gorzów Wielkopolski", "Zielona Góra"}},
	{"łódzkie", []string{"Łódź"}},
	{"małopolskie", []string{"Kraków"}},
	{"mazowieckie", []string{"Warszawa"}},
	{"opolskie", []string{"Opole"}},
	{"podkarpackie", []string{"Rzeszów"}},
	{"podlaskie", []string{"Białystok"}},
	{"pomorskie", []string{"Gdańsk"}},
	{"śląskie", []string{"Katowice"}},
	{"świętokrzyskie", []string{"Kielce"}},
	{"warmińsko-mazurskie", []string{"Olsztyn"}},
	{"wielkopolskie", []string{"Poznań"}},
	{"zachodniopomorskie", []string{"Szczecin"}},
}

var defaultCategories = map[domain.CategoryKind][]domain.Category{
	domain.CategoryListing: {
		{ID: 1, Name: "Elektronika", Icon: "laptop"},
		{ID: 2, Name: "Motoryzacja", Icon: "car"},
		{ID: 3, Name: "Dom i ogród", Icon: "home"},
		{ID: 4, Name: "Moda", Icon: "shirt"},
		{ID: 5, Name: "Sport", Icon: "bicycle"},
	},
	domain.CategoryJobListing: {
		{ID: 1, Name: "IT", Icon: "code"},
		{ID: 2, Name: "Transport", Icon: "truck"},
		{ID: 3, Name: "Gastronomia", Icon: "utensils"},
		{ID: 4, Name: "Budownictwo", Icon: "hammer"},
	},
}

// SeedReferenceData upserts regions, cities and categories. Running it again
// leaves existing documents as they are.
func SeedReferenceData(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	var regions, cities []mongo.WriteModel
	for i, v := range voivodeships {
		regionID := int64(i + 1)
		regions = append(regions, insertIfMissing(regionID, bson.M{"name": v.name}))
		for j, name := range v.cities {
			cityID := regionID*100 + int64(j+1)
			cities = append(cities, insertIfMissing(cityID, bson.M{"region_id": regionID, "name": name}))
		}
	}

	if err := bulkUpsert(ctx, db.Collection(collectionRegions), regions); err != nil {
		return fmt.Errorf("seed regions: %w", err)
	}
	if err := bulkUpsert(ctx, db.Collection(collectionCities), cities); err != nil {
		return fmt.Errorf("seed cities: %w", err)
	}

	categories := NewCategoryRepository(db)
	for kind, list := range defaultCategories {
		col, err := categories.col(kind)
		if err != nil {
			return err
		}
		models := make([]mongo.WriteModel, 0, len(list))
		for _, c := range list {
			models = append(models, insertIfMissing(c.ID, bson.M{"kind": kind, "name": c.Name, "icon": c.Icon}))
		}
		if err := bulkUpsert(ctx, col, models); err != nil {
			return fmt.Errorf("seed %s categories: %w", kind, err)
		}
	}
	return nil
}

// insertIfMissing creates the document with the given _id and fields unless
// one with that _id already exists.
func insertIfMissing(id int64, fields bson.M) mongo.WriteModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": id}).
		SetUpdate(bson.M{"$setOnInsert": fields}).
		SetUpsert(true)
}

func bulkUpsert(ctx context.Context, col *mongo.Collection, models []mongo.WriteModel) error {
	if len(models) == 0 {
		return nil
	}
	_, err := col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

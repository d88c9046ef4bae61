package mongo

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// searchFilter builds the common listing query: optional equality on the
// reference ids plus a case-insensitive substring match on textField.
func searchFilter(cityID, userID, categoryID *int64, textField, search string) bson.M {
	filter := bson.M{}
	if cityID != nil {
		filter["city_id"] = *cityID
	}
	if userID != nil {
		filter["user_id"] = *userID
	}
	if categoryID != nil {
		filter["category_id"] = *categoryID
	}
	if s := strings.TrimSpace(search); s != "" {
		filter[textField] = primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
	}
	return filter
}

// pageOptions turns an ordering like "-price" into a sort; newest first by
// default. _id is the tie breaker so pages are stable.
func pageOptions(ordering string, limit, offset int) *options.FindOptions {
	field, dir := "creation_date", -1
	if ordering != "" {
		field, dir = ordering, 1
		if strings.HasPrefix(ordering, "-") {
			field, dir = ordering[1:], -1
		}
	}
	return options.Find().
		SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
}

package validators

import "go.mongodb.org/mongo-driver/bson"

var CabinValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "max_capacity", "regular_price"},
		"additionalProperties": true,

		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"max_capacity": bson.M{
				"bsonType": "number",
				"minimum":  1,
			},
			"regular_price": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},
			"discount": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"active", "inactive"},
			},
		},
	},
}

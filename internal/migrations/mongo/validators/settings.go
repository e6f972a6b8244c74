package validators

import "go.mongodb.org/mongo-driver/bson"

var SettingsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"additionalProperties": true,

		"properties": bson.M{
			"min_booking_length":     bson.M{"bsonType": "number", "minimum": 0},
			"max_booking_length":     bson.M{"bsonType": "number", "minimum": 0},
			"max_guests_per_booking": bson.M{"bsonType": "number", "minimum": 0},
			"breakfast_price":        bson.M{"bsonType": "number", "minimum": 0},
			"pet_fee":                bson.M{"bsonType": "number", "minimum": 0},
			"parking_fee":            bson.M{"bsonType": "number", "minimum": 0},
			"parking_included":       bson.M{"bsonType": "bool"},
			"early_check_in_fee":     bson.M{"bsonType": "number", "minimum": 0},
			"late_check_out_fee":     bson.M{"bsonType": "number", "minimum": 0},
			"require_deposit":        bson.M{"bsonType": "bool"},
			"deposit_percentage": bson.M{
				"bsonType": "number",
				"minimum":  0,
				"maximum":  100,
			},
		},
	},
}

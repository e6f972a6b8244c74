package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"cabin_id",
			"customer_id",
			"check_in_date",
			"check_out_date",
			"num_nights",
			"num_guests",
			"status",
			"total_price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"cabin_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"check_in_date": bson.M{
				"bsonType": "date",
			},

			"check_out_date": bson.M{
				"bsonType": "date",
			},

			"num_nights": bson.M{
				"bsonType": "number",
				"minimum":  1,
			},

			"num_guests": bson.M{
				"bsonType": "number",
				"minimum":  1,
				"maximum":  50,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"unconfirmed",
					"confirmed",
					"checked-in",
					"checked-out",
					"cancelled",
				},
			},

			"cabin_price":      bson.M{"bsonType": "number", "minimum": 0},
			"extras_price":     bson.M{"bsonType": "number", "minimum": 0},
			"total_price":      bson.M{"bsonType": "number", "minimum": 0},
			"deposit_amount":   bson.M{"bsonType": "number", "minimum": 0},
			"remaining_amount": bson.M{"bsonType": "number", "minimum": 0},

			"payment_method": bson.M{
				"bsonType": "string",
				"enum":     []string{"cash", "card", "bank-transfer", "online"},
			},

			"observations": bson.M{
				"bsonType":  "string",
				"maxLength": 20000,
			},

			"special_requests": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

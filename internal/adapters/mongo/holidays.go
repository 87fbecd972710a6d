package mongo

import (
	"context"
	"time"

	"github.com/mllanos/park-ticket-orders/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HolidayCatalog holds the park's closed-date list. The calendar loads it
// once at process start; ops tooling maintains the collection.
type HolidayCatalog struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewHolidayCatalog(db *mongo.Database, logger observability.Logger) *HolidayCatalog {
	return &HolidayCatalog{
		coll:   db.Collection("holidays"),
		logger: logger,
	}
}

type HolidayDoc struct {
	Date time.Time `bson:"date"`
	Name string    `bson:"name"`
}

func (c *HolidayCatalog) LoadAll(ctx context.Context) ([]time.Time, error) {
	cursor, err := c.coll.Find(ctx, bson.M{})
	if err != nil {
		c.logger.Error("failed to load holidays", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var dates []time.Time
	for cursor.Next(ctx) {
		var doc HolidayDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		dates = append(dates, doc.Date)
	}
	return dates, cursor.Err()
}

func (c *HolidayCatalog) AddHoliday(ctx context.Context, doc HolidayDoc) error {
	_, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		c.logger.Error("failed to insert holiday", err)
	}
	return err
}

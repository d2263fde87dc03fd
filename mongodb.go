package main

import (
	"context"
	"crypto/tls"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBOrderRepo struct {
	db *mongo.Collection
}

func NewMongoDBOrderRepo(mongoURI string, mongoDB string, mongoCollection string, mongoUser string, mongoPassword string) (*MongoDBOrderRepo, error) {
	ctx := context.Background()

	var clientOptions *options.ClientOptions
	if mongoUser == "" && mongoPassword == "" {
		clientOptions = options.Client().ApplyURI(mongoURI)
	} else {
		clientOptions = options.Client().ApplyURI(mongoURI).
			SetAuth(options.Credential{
				AuthSource: mongoDB,
				Username:   mongoUser,
				Password:   mongoPassword,
			}).
			SetTLSConfig(&tls.Config{InsecureSkipVerify: false})
	}

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Printf("failed to connect to mongodb: %s", err)
		return nil, err
	}

	err = mongoClient.Ping(ctx, nil)
	if err != nil {
		log.Printf("failed to ping database: %s", err)
		return nil, err
	}
	log.Printf("pong from database")

	collection := mongoClient.Database(mongoDB).Collection(mongoCollection)

	return &MongoDBOrderRepo{collection}, nil
}

func (r *MongoDBOrderRepo) InsertOrder(ctx context.Context, order Order) error {
	_, err := r.db.InsertOne(ctx, order)
	if err != nil {
		log.Printf("Failed to insert order: %s", err)
		return err
	}
	return nil
}

func (r *MongoDBOrderRepo) GetAllOrders(ctx context.Context) ([]Order, error) {
	var orders []Order

	cursor, err := r.db.Find(ctx, bson.M{})
	if err != nil {
		log.Printf("Failed to find records: %s", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var order Order
		if err := cursor.Decode(&order); err != nil {
			log.Printf("Failed to decode order: %s", err)
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := cursor.Err(); err != nil {
		log.Printf("Failed to iterate records: %s", err)
		return nil, err
	}

	return orders, nil
}

func (r *MongoDBOrderRepo) GetOrder(ctx context.Context, orderID int) (Order, bool, error) {
	filter := bson.D{{Key: "order_id", Value: orderID}}

	var order Order
	err := r.db.FindOne(ctx, filter).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return Order{}, false, nil
	}
	if err != nil {
		log.Printf("Failed to decode order: %s", err)
		return Order{}, false, err
	}

	return order, true, nil
}

func (r *MongoDBOrderRepo) GetOrdersByUser(ctx context.Context, userID int64) ([]Order, error) {
	var orders []Order

	cursor, err := r.db.Find(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		log.Printf("Failed to find records: %s", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var order Order
		if err := cursor.Decode(&order); err != nil {
			log.Printf("Failed to decode order: %s", err)
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := cursor.Err(); err != nil {
		log.Printf("Failed to iterate records: %s", err)
		return nil, err
	}

	return orders, nil
}

func (r *MongoDBOrderRepo) SetOrderStatus(ctx context.Context, orderID int, status string) (int64, error) {
	filter := bson.D{{Key: "order_id", Value: orderID}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: status},
		}},
	}

	updateResult, err := r.db.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Printf("Failed to update order: %s", err)
		return 0, err
	}

	log.Printf("Matched %v documents and updated %v documents", updateResult.MatchedCount, updateResult.ModifiedCount)
	return updateResult.ModifiedCount, nil
}

func (r *MongoDBOrderRepo) DeleteOrdersByUser(ctx context.Context, userID int64) (int64, error) {
	filter := bson.D{{Key: "user_id", Value: userID}}

	deleteResult, err := r.db.DeleteMany(ctx, filter)
	if err != nil {
		log.Printf("Failed to delete orders: %s", err)
		return 0, err
	}

	if deleteResult.DeletedCount == 0 {
		log.Printf("No orders found for user %d to delete", userID)
	} else {
		log.Printf("Deleted %d orders for user %d", deleteResult.DeletedCount, userID)
	}

	return deleteResult.DeletedCount, nil
}

package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	LocationsCollection     *mongo.Collection
	RegistersCollection     *mongo.Collection
	SessionsCollection      *mongo.Collection
	DrawerCollection        *mongo.Collection
	SessionTotalsCollection *mongo.Collection
	CartCollection          *mongo.Collection
	CartCustomerCollection  *mongo.Collection
	CustomersCollection     *mongo.Collection
	ProductsCollection      *mongo.Collection
	OrdersCollection        *mongo.Collection
	CountersCollection      *mongo.Collection
	TaxRatesCollection      *mongo.Collection
	PromotionsCollection    *mongo.Collection
	IdempotencyCollection   *mongo.Collection
	UserCollection          *mongo.Collection
	Client                  *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("db: no .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	posdb := Client.Database("posdb")
	LocationsCollection = posdb.Collection("locations")
	RegistersCollection = posdb.Collection("registers")
	SessionsCollection = posdb.Collection("sessions")
	DrawerCollection = posdb.Collection("drawer_events")
	SessionTotalsCollection = posdb.Collection("session_totals")
	CartCollection = posdb.Collection("cart")
	CartCustomerCollection = posdb.Collection("cart_customers")
	CustomersCollection = posdb.Collection("customers")
	ProductsCollection = posdb.Collection("products")
	OrdersCollection = posdb.Collection("orders")
	CountersCollection = posdb.Collection("counters")
	TaxRatesCollection = posdb.Collection("tax_rates")
	PromotionsCollection = posdb.Collection("promotions")
	IdempotencyCollection = posdb.Collection("idempotency")
	UserCollection = posdb.Collection("users")
}

package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LookupProduct resolves a scanned barcode or keyed-in SKU to a catalog
// item. This sits on the hot path of every scan, so it answers from a
// single indexed query.
func LookupProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	code := ps.ByName("code")

	var product models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{
		"$or":    []bson.M{{"sku": code}, {"barcode": code}},
		"active": true,
	}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Println("LookupProduct error:", err)
		http.Error(w, "Failed to look up product", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, product)
}

// SearchProducts lists active catalog items with pagination; ?search=
// prefix-matches name or SKU, ?category= narrows by category.
func SearchProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := utils.ParseQueryOptions(r)

	filter := bson.M{"active": true}
	if opts.Search != "" {
		term := strings.TrimSpace(opts.Search)
		prefix := bson.M{"$regex": "^" + term, "$options": "i"}
		filter["$or"] = []bson.M{{"name": prefix}, {"sku": prefix}}
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		filter["category"] = cat
	}

	findOpts := options.Find().
		SetSort(bson.M{"name": 1}).
		SetLimit(int64(opts.Limit)).
		SetSkip(int64((opts.Page - 1) * opts.Limit))

	cursor, err := db.ProductsCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Println("SearchProducts error:", err)
		http.Error(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	results := []models.Product{}
	if err := cursor.All(ctx, &results); err != nil {
		http.Error(w, "Failed to decode products", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
}

func validateProduct(p *models.Product) string {
	if p.SKU == "" || p.Name == "" {
		return "SKU and name are required"
	}
	if p.Price < 0 {
		return "Price cannot be negative"
	}
	for _, tier := range p.Tiers {
		if tier.Label == "" {
			return "Tier labels are required"
		}
		if tier.Price < 0 {
			return "Tier prices cannot be negative"
		}
	}
	return ""
}

// CreateProduct adds a catalog item. Manager only.
func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if msg := validateProduct(&product); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	count, err := db.ProductsCollection.CountDocuments(ctx, bson.M{"sku": product.SKU})
	if err != nil {
		log.Println("CreateProduct count error:", err)
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "SKU already exists", http.StatusConflict)
		return
	}

	product.Active = true
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	if _, err := db.ProductsCollection.InsertOne(ctx, product); err != nil {
		log.Println("CreateProduct insert error:", err)
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct edits a catalog item by SKU. Manager only.
func UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sku := ps.ByName("sku")

	var body struct {
		Name      *string       `json:"name"`
		Category  *string       `json:"category"`
		Price     *int64        `json:"priceCents"`
		Tiers     []models.Tier `json:"tiers"`
		Barcode   *string       `json:"barcode"`
		TaxExempt *bool         `json:"taxExempt"`
		Active    *bool         `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.Category != nil {
		set["category"] = *body.Category
	}
	if body.Price != nil {
		if *body.Price < 0 {
			http.Error(w, "Price cannot be negative", http.StatusBadRequest)
			return
		}
		set["price"] = *body.Price
	}
	if body.Tiers != nil {
		set["tiers"] = body.Tiers
	}
	if body.Barcode != nil {
		set["barcode"] = *body.Barcode
	}
	if body.TaxExempt != nil {
		set["tax_exempt"] = *body.TaxExempt
	}
	if body.Active != nil {
		set["active"] = *body.Active
	}

	res, err := db.ProductsCollection.UpdateOne(ctx, bson.M{"sku": sku}, bson.M{"$set": set})
	if err != nil {
		log.Println("UpdateProduct error:", err)
		http.Error(w, "Failed to update product", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"updated": true})
}

// DeleteProduct deactivates a SKU rather than removing it, so past
// orders keep resolving. Manager only.
func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.ProductsCollection.UpdateOne(ctx,
		bson.M{"sku": ps.ByName("sku")},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		log.Println("DeleteProduct error:", err)
		http.Error(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deleted": true})
}

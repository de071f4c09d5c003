// Package mongostore is the MongoDB implementation of devserver.Store.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fjod/go_cart/storefront/internal/devserver"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	defaultAppName                = "storefront-api"
	defaultMaxPoolSize            = 20
	defaultServerSelectionTimeout = 5 * time.Second
)

type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongo.Collection
	products *mongo.Collection
	carts    *mongo.Collection
	orders   *mongo.Collection
}

var _ devserver.Store = (*Store)(nil)

// Options describes the connection Open makes. Zero fields take defaults.
type Options struct {
	URI                    string
	Database               string
	AppName                string
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
}

// Open connects to opts.Database, checks the server answers and ensures the
// store's indexes exist. Close releases the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.AppName == "" {
		opts.AppName = defaultAppName
	}
	if opts.MaxPoolSize == 0 {
		opts.MaxPoolSize = defaultMaxPoolSize
	}
	if opts.ServerSelectionTimeout == 0 {
		opts.ServerSelectionTimeout = defaultServerSelectionTimeout
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetAppName(opts.AppName).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetServerSelectionTimeout(opts.ServerSelectionTimeout).
		SetRetryWrites(true))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(opts.Database)
	s := &Store{
		client:   client,
		db:       db,
		users:    db.Collection("users"),
		products: db.Collection("products"),
		carts:    db.Collection("carts"),
		orders:   db.Collection("orders"),
	}
	if err := s.CreateIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) CreateIndexes(ctx context.Context) error {
	indexes := []struct {
		collection *mongo.Collection
		models     []mongo.IndexModel
	}{
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{s.products, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "featured", Value: 1}}},
		}},
		{s.carts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{s.orders, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.collection.Indexes().CreateMany(ctx, idx.models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", idx.collection.Name(), err)
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, rec devserver.UserRecord) error {
	doc := userDocument{
		ID:           rec.User.ID,
		Email:        rec.User.Email,
		EmailKey:     strings.ToLower(rec.User.Email),
		FullName:     rec.User.FullName,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.User.CreatedAt,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return devserver.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (devserver.UserRecord, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"email_key": strings.ToLower(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return devserver.UserRecord{}, devserver.ErrNotFound
		}
		return devserver.UserRecord{}, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.record(), nil
}

func (s *Store) UserByID(ctx context.Context, id string) (domain.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, devserver.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.record().User, nil
}

func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := bson.M{}
	if filter.Category != nil {
		query["category"] = string(*filter.Category)
	}
	if filter.Featured != nil {
		query["featured"] = *filter.Featured
	}

	cur, err := s.products.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.product()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var doc productDocument
	err := s.products.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, devserver.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return doc.product()
}

func (s *Store) InsertProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		doc, err := newProductDocument(p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	if _, err := s.products.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}
	return nil
}

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	n, err := s.products.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (s *Store) GetOrCreateCart(ctx context.Context, userID string) (domain.Cart, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"id":         newID(),
			"user_id":    userID,
			"items":      []domain.CartItem{},
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var cart domain.Cart
	if err := s.carts.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&cart); err != nil {
		return domain.Cart{}, fmt.Errorf("failed to get or create cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (s *Store) getCart(ctx context.Context, userID string) (domain.Cart, error) {
	var cart domain.Cart
	err := s.carts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Cart{}, devserver.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (s *Store) AddCartItem(ctx context.Context, userID string, item domain.CartItem) (domain.Cart, error) {
	if _, err := s.GetOrCreateCart(ctx, userID); err != nil {
		return domain.Cart{}, err
	}
	now := time.Now().UTC()

	// Same variant already in the cart: bump its quantity.
	filter := bson.M{
		"user_id": userID,
		"items": bson.M{"$elemMatch": bson.M{
			"product_id": item.ProductID,
			"size":       item.Size,
			"color":      item.Color,
		}},
	}
	update := bson.M{
		"$inc": bson.M{"items.$.quantity": item.Quantity},
		"$set": bson.M{"updated_at": now},
	}
	res, err := s.carts.UpdateOne(ctx, filter, update)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("failed to update existing item: %w", err)
	}

	if res.MatchedCount == 0 {
		update = bson.M{
			"$push": bson.M{"items": item},
			"$set":  bson.M{"updated_at": now},
		}
		if _, err := s.carts.UpdateOne(ctx, bson.M{"user_id": userID}, update); err != nil {
			return domain.Cart{}, fmt.Errorf("failed to add new item: %w", err)
		}
	}

	return s.getCart(ctx, userID)
}

func (s *Store) RemoveCartProduct(ctx context.Context, userID, productID string) (domain.Cart, error) {
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"product_id": productID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := s.carts.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("failed to remove item: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.Cart{}, devserver.ErrCartNotFound
	}
	return s.getCart(ctx, userID)
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	update := bson.M{"$set": bson.M{"items": []domain.CartItem{}, "updated_at": time.Now().UTC()}}
	if _, err := s.carts.UpdateOne(ctx, bson.M{"user_id": userID}, update); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) error {
	doc, err := newOrderDocument(order)
	if err != nil {
		return err
	}
	if _, err := s.orders.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	cur, err := s.orders.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		o, err := doc.order()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

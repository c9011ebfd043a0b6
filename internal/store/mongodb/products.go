package mongodb

import (
	"context"
	"regexp"
	"strings"

	"github.com/vinodjarare/shopgraph/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type productDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Quantity  int                `bson:"quantity"`
	Owner     primitive.ObjectID `bson:"owner"`
	CreatedAt primitive.DateTime `bson:"createdAt"`
	UpdatedAt primitive.DateTime `bson:"updatedAt"`
}

// joinedProductDoc is a product after the owner $lookup.
type joinedProductDoc struct {
	Product  productDoc `bson:",inline"`
	OwnerDoc userDoc    `bson:"ownerDoc"`
}

func (d joinedProductDoc) toModel() models.Product {
	owner := d.OwnerDoc.toModel()
	return models.Product{
		ID:        d.Product.ID.Hex(),
		Name:      d.Product.Name,
		Price:     d.Product.Price,
		Quantity:  d.Product.Quantity,
		OwnerID:   d.Product.Owner.Hex(),
		Owner:     &owner,
		CreatedAt: d.Product.CreatedAt.Time().UTC(),
		UpdatedAt: d.Product.UpdatedAt.Time().UTC(),
	}
}

// ownerJoin joins the owning user, drops products whose owner is gone and
// strips the owner's password.
func ownerJoin() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "ownerDoc"},
		}}},
		{{Key: "$unwind", Value: "$ownerDoc"}},
		{{Key: "$project", Value: bson.D{{Key: "ownerDoc.password", Value: 0}}}},
	}
}

func pipeline(match bson.D, tail ...bson.D) mongo.Pipeline {
	p := mongo.Pipeline{{{Key: "$match", Value: match}}}
	p = append(p, ownerJoin()...)
	return append(p, tail...)
}

func (s *Store) aggregateProducts(ctx context.Context, p mongo.Pipeline) ([]models.Product, error) {
	cursor, err := s.products.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	var docs []joinedProductDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}

func (s *Store) findOneProduct(ctx context.Context, match bson.D, what string) (models.Product, error) {
	products, err := s.aggregateProducts(ctx, pipeline(match, bson.D{{Key: "$limit", Value: 1}}))
	if err != nil {
		return models.Product{}, err
	}
	if len(products) == 0 {
		return models.Product{}, mapError(mongo.ErrNoDocuments, what)
	}
	return products[0], nil
}

// CreateProduct inserts a new product.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	owner, err := objectID(product.OwnerID, "owner")
	if err != nil {
		return err
	}

	now := s.timestamp()
	doc := productDoc{
		ID:        primitive.NewObjectID(),
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  product.Quantity,
		Owner:     owner,
		CreatedAt: primitive.NewDateTimeFromTime(now),
		UpdatedAt: primitive.NewDateTimeFromTime(now),
	}
	if _, err := s.products.InsertOne(ctx, doc); err != nil {
		return mapError(err, "product "+product.Name)
	}

	product.ID = doc.ID.Hex()
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

// UpdateProduct overwrites the writable fields of an existing product.
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	oid, err := objectID(product.ID, "product")
	if err != nil {
		return err
	}

	now := s.timestamp()
	res, err := s.products.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: product.Name},
			{Key: "price", Value: product.Price},
			{Key: "quantity", Value: product.Quantity},
			{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(now)},
		}}},
	)
	if err != nil {
		return mapError(err, "product "+product.Name)
	}
	if res.MatchedCount == 0 {
		return mapError(mongo.ErrNoDocuments, "product with ID "+product.ID)
	}
	product.UpdatedAt = now
	return nil
}

// GetProductByID retrieves a single product by its ID.
func (s *Store) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	oid, err := objectID(id, "product")
	if err != nil {
		return models.Product{}, err
	}
	return s.findOneProduct(ctx, bson.D{{Key: "_id", Value: oid}}, "product with ID "+id)
}

// GetProductByName retrieves a single product by its (lower-cased) name.
func (s *Store) GetProductByName(ctx context.Context, name string) (models.Product, error) {
	return s.findOneProduct(ctx, bson.D{{Key: "name", Value: name}}, "product "+name)
}

// CountProducts returns the number of products.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	n, err := s.products.CountDocuments(ctx, bson.D{})
	return int(n), err
}

// ListProductsByOwner returns every product owned by ownerID.
func (s *Store) ListProductsByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []models.Product{}, nil
	}
	return s.aggregateProducts(ctx, pipeline(
		bson.D{{Key: "owner", Value: owner}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}}},
	))
}

type searchResult struct {
	Docs  []joinedProductDoc `bson:"docs"`
	Total []struct {
		Count int `bson:"count"`
	} `bson:"total"`
}

// SearchProducts runs match → owner lookup → sort → page in a single aggregation,
// counting matches in the same pass with $facet.
func (s *Store) SearchProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, int, error) {
	match := bson.D{{Key: "name", Value: primitive.Regex{
		Pattern: regexp.QuoteMeta(strings.ToLower(q.Search)),
		Options: "i",
	}}}

	p := pipeline(match,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "docs", Value: bson.A{
				bson.D{{Key: "$skip", Value: int64(q.Skip())}},
				bson.D{{Key: "$limit", Value: int64(q.Limit)}},
			}},
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$count", Value: "count"}},
			}},
		}}},
	)

	cursor, err := s.products.Aggregate(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	var results []searchResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	total := 0
	if len(results) > 0 {
		for _, d := range results[0].Docs {
			products = append(products, d.toModel())
		}
		if len(results[0].Total) > 0 {
			total = results[0].Total[0].Count
		}
	}
	return products, total, nil
}

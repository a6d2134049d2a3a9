package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/roomedit"
)

// DynamoDB key constants for the single-table design.
const (
	pkPrefix = "ROOM#"
	skLatest = "STATE#latest"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore implements StateStore using AWS DynamoDB. The catalog is kept
// as zstd-compressed JSON in a single binary attribute.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

// Compile-time interface check.
var _ StateStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName, now: time.Now}
}

// stateRecord is the DynamoDB shape of an ImageState.
type stateRecord struct {
	Image         string `dynamodbav:"image"`
	Parent        string `dynamodbav:"parent,omitempty"`
	CatalogStatus string `dynamodbav:"catalogStatus"`
	Catalog       []byte `dynamodbav:"catalog"`
	ObjectCount   int    `dynamodbav:"objectCount"`
	UpdatedAt     int64  `dynamodbav:"updatedAt"`
}

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// encodeCatalog compresses the JSON form of c. A nil catalog and an empty
// one encode differently so "pending" and "nothing found" survive a round
// trip.
func encodeCatalog(c roomedit.Catalog) ([]byte, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return encoder.EncodeAll(raw, nil), nil
}

func decodeCatalog(data []byte) (roomedit.Catalog, error) {
	if len(data) == 0 {
		return nil, nil
	}
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress catalog: %w", err)
	}
	var c roomedit.Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return c, nil
}

func roomPK(roomID string) string {
	return pkPrefix + roomID
}

func (s *DynamoStore) key(roomID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: roomPK(roomID)},
		"SK": &types.AttributeValueMemberS{Value: skLatest},
	}
}

// GetState implements StateStore.
func (s *DynamoStore) GetState(ctx context.Context, roomID string) (*roomedit.ImageState, error) {
	if err := ValidateRoomID(roomID); err != nil {
		return nil, err
	}
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(roomID),
		ConsistentRead: boolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem PK=%s SK=%s: %w", roomPK(roomID), skLatest, err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var rec stateRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal PK=%s SK=%s: %w", roomPK(roomID), skLatest, err)
	}
	catalog, err := decodeCatalog(rec.Catalog)
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", roomID, err)
	}
	return &roomedit.ImageState{
		Image:         roomedit.ImageRef(rec.Image),
		Parent:        roomedit.ImageRef(rec.Parent),
		Catalog:       catalog,
		CatalogStatus: roomedit.CatalogStatus(rec.CatalogStatus),
	}, nil
}

// PutState implements StateStore.
func (s *DynamoStore) PutState(ctx context.Context, roomID string, state *roomedit.ImageState) error {
	if err := ValidateRoomID(roomID); err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("nil state for room %s", roomID)
	}
	catalog, err := encodeCatalog(state.Catalog)
	if err != nil {
		return err
	}
	now := s.now()
	item, err := attributevalue.MarshalMap(stateRecord{
		Image:         string(state.Image),
		Parent:        string(state.Parent),
		CatalogStatus: string(state.CatalogStatus),
		Catalog:       catalog,
		ObjectCount:   len(state.Catalog),
		UpdatedAt:     now.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	// Add key and TTL attributes.
	for k, v := range s.key(roomID) {
		item[k] = v
	}
	item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(RoomTTL).Unix(), 10)}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("PutItem PK=%s SK=%s: %w", roomPK(roomID), skLatest, err)
	}

	log.Debug().
		Str("room", roomID).
		Str("image", string(state.Image)).
		Str("catalog_status", string(state.CatalogStatus)).
		Int("objects", len(state.Catalog)).
		Int("catalog_bytes", len(catalog)).
		Msg("Room state saved")
	return nil
}

func boolPtr(b bool) *bool { return &b }

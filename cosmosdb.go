package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
)

type PartitionKey struct {
	Key   string
	Value string
}

// CosmosDBOrderRepo stores orders in an Azure Cosmos DB SQL container. All
// documents live under a single fixed partition. Cosmos addresses documents by
// an internal "id", so mutations first resolve the id from the order fields.
type CosmosDBOrderRepo struct {
	db           *azcosmos.ContainerClient
	partitionKey PartitionKey
}

func NewCosmosDBOrderRepoWithManagedIdentity(cosmosDbEndpoint string, dbName string, containerName string, partitionKey PartitionKey) (*CosmosDBOrderRepo, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		log.Printf("failed to create cosmosdb workload identity credential: %v", err)
		return nil, err
	}

	opts := azcosmos.ClientOptions{
		EnableContentResponseOnWrite: true,
	}

	client, err := azcosmos.NewClient(cosmosDbEndpoint, cred, &opts)
	if err != nil {
		log.Printf("failed to create cosmosdb client: %v", err)
		return nil, err
	}

	container, err := client.NewContainer(dbName, containerName)
	if err != nil {
		log.Printf("failed to create cosmosdb container: %v", err)
		return nil, err
	}

	return &CosmosDBOrderRepo{container, partitionKey}, nil
}

func NewCosmosDBOrderRepo(cosmosDbEndpoint string, dbName string, containerName string, cosmosDbKey string, partitionKey PartitionKey) (*CosmosDBOrderRepo, error) {
	cred, err := azcosmos.NewKeyCredential(cosmosDbKey)
	if err != nil {
		log.Printf("failed to create cosmosdb key credential: %v", err)
		return nil, err
	}

	client, err := azcosmos.NewClientWithKey(cosmosDbEndpoint, cred, nil)
	if err != nil {
		log.Printf("failed to create cosmosdb client: %v", err)
		return nil, err
	}

	container, err := client.NewContainer(dbName, containerName)
	if err != nil {
		log.Printf("failed to create cosmosdb container: %v", err)
		return nil, err
	}

	return &CosmosDBOrderRepo{container, partitionKey}, nil
}

func (r *CosmosDBOrderRepo) InsertOrder(ctx context.Context, order Order) error {
	pk := azcosmos.NewPartitionKeyString(r.partitionKey.Value)

	marshalledOrder, err := json.Marshal(order)
	if err != nil {
		log.Printf("failed to marshal order: %v", err)
		return err
	}

	var doc map[string]interface{}
	err = json.Unmarshal(marshalledOrder, &doc)
	if err != nil {
		log.Printf("failed to unmarshal order: %v", err)
		return err
	}

	// Cosmos requires a string document id; the order_id is not one.
	uuidWithHyphen, err := uuid.NewV4()
	if err != nil {
		log.Printf("failed to generate uuid: %v", err)
		return err
	}
	doc["id"] = strings.Replace(uuidWithHyphen.String(), "-", "", -1)
	doc[r.partitionKey.Key] = r.partitionKey.Value

	marshalledOrder, err = json.Marshal(doc)
	if err != nil {
		log.Printf("failed to marshal order: %v", err)
		return err
	}

	_, err = r.db.CreateItem(ctx, pk, marshalledOrder, nil)
	if err != nil {
		log.Printf("failed to create item: %v", err)
		return err
	}

	return nil
}

func (r *CosmosDBOrderRepo) GetAllOrders(ctx context.Context) ([]Order, error) {
	var orders []Order

	pk := azcosmos.NewPartitionKeyString(r.partitionKey.Value)

	queryPager := r.db.NewQueryItemsPager("SELECT * FROM o", pk, nil)

	for queryPager.More() {
		queryResponse, err := queryPager.NextPage(ctx)
		if err != nil {
			log.Printf("failed to get next page: %v", err)
			return nil, err
		}

		for _, item := range queryResponse.Items {
			var order Order
			err := json.Unmarshal(item, &order)
			if err != nil {
				log.Printf("failed to deserialize order: %v", err)
				return nil, err
			}
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *CosmosDBOrderRepo) GetOrder(ctx context.Context, orderID int) (Order, bool, error) {
	pk := azcosmos.NewPartitionKeyString(r.partitionKey.Value)
	opt := &azcosmos.QueryOptions{
		QueryParameters: []azcosmos.QueryParameter{
			{Name: "@orderId", Value: orderID},
		},
	}
	queryPager := r.db.NewQueryItemsPager("SELECT * FROM o WHERE o.order_id = @orderId", pk, opt)

	for queryPager.More() {
		queryResponse, err := queryPager.NextPage(ctx)
		if err != nil {
			log.Printf("failed to get next page: %v", err)
			return Order{}, false, err
		}

		for _, item := range queryResponse.Items {
			var order Order
			err := json.Unmarshal(item, &order)
			if err != nil {
				log.Printf("failed to deserialize order: %v", err)
				return Order{}, false, err
			}
			return order, true, nil
		}
	}
	return Order{}, false, nil
}

func (r *CosmosDBOrderRepo) GetOrdersByUser(ctx context.Context, userID int64) ([]Order, error) {
	var orders []Order

	pk := azcosmos.NewPartitionKeyString(r.partitionKey.Value)
	opt := &azcosmos.QueryOptions{
		QueryParameters: []azcosmos.QueryParameter{
			{Name: "@userId", Value: userID},
		},
	}
	queryPager := r.db.NewQueryItemsPager("SELECT * FROM o WHERE o.user_id = @userId", pk, opt)

	for queryPager.More() {
		queryResponse, err := queryPager.NextPage(ctx)
		if err != nil {
			log.Printf("failed to get next page: %v", err)
			return nil, err
		}

		for _, item := range queryResponse.Items {
			var order Order
			err := json.Unmarshal(item, &order)
			if err != nil {
				log.Printf("failed to deserialize order: %v", err)
				return nil, err
			}
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *CosmosDBOrderRepo) SetOrderStatus(ctx context.Context, orderID int, status string) (int64, error) {
	pk := azcosmos.NewPartitionKeyString(r.partitionKey.Value)

	// Resolve the internal Cosmos 'id' and current status from the order_id.
	var existingID string
	var existingStatus string
	opt := &azcosmos.QueryOptions{
		QueryParameters: []azcosmos.QueryParameter{
			{Name: "@orderId", Value: orderID},
		},
	}
	queryPager := r.db.NewQueryItemsPager("SELECT * FROM o WHERE o.order_id = @orderId", pk, opt)

	for queryPager.More() {
		queryResponse, err := queryPager.NextPage(ctx)
		if err != nil {
			log.Printf("failed to query for update: %v", err)
			return 0, err
		}

		for _, item := range queryResponse.Items {
			var orderDoc map[string]interface{}
			err = json.Unmarshal(item, &orderDoc)
			if err != nil {
				log.Printf("failed to deserialize order doc: %v", err)
				return 0, err
			}
			existingID, _ = orderDoc["id"].(string)
			existingStatus, _ = orderDoc["status"].(string)
			break
		}
		if existingID != "" {
			break
		}
	}

	if existingID == "" {
		log.Printf("Order %d not found for update", orderID)
		return 0, nil
	}

	// Mirror the modified-count semantics of the Mongo backend: replacing a
	// status with the same value modifies nothing.
	if existingStatus == status {
		return 0, nil
	}

	patch := azcosmos.PatchOperations{}
	patch.AppendReplace("/status", status)

	_, err := r.db.PatchItem(ctx, pk, existingID, patch, nil)
	if err != nil {
		log.Printf("failed to patch item: %v", err)
		return 0, err
	}

	return 1, nil
}

func (r *CosmosDBOrderRepo) DeleteOrdersByUser(ctx context.Context, userID int64) (int64, error) {
	pk := azcosmos.NewPartitionKeyString(r.partitionKey.Value)

	// Collect the internal ids of every matching document, then delete them
	// one by one (Cosmos needs the partition key AND the internal 'id').
	var ids []string
	opt := &azcosmos.QueryOptions{
		QueryParameters: []azcosmos.QueryParameter{
			{Name: "@userId", Value: userID},
		},
	}
	queryPager := r.db.NewQueryItemsPager("SELECT * FROM o WHERE o.user_id = @userId", pk, opt)

	for queryPager.More() {
		queryResponse, err := queryPager.NextPage(ctx)
		if err != nil {
			log.Printf("failed to query for delete: %v", err)
			return 0, err
		}
		for _, item := range queryResponse.Items {
			var orderDoc map[string]interface{}
			if err := json.Unmarshal(item, &orderDoc); err != nil {
				log.Printf("failed to deserialize order doc: %v", err)
				continue
			}
			if id, ok := orderDoc["id"].(string); ok {
				ids = append(ids, id)
			}
		}
	}

	var deleted int64
	for _, id := range ids {
		if _, err := r.db.DeleteItem(ctx, pk, id, nil); err != nil {
			log.Printf("failed to delete item %s: %v", id, err)
			return deleted, err
		}
		deleted++
	}

	if deleted == 0 {
		log.Printf("No orders found for user %d to delete", userID)
	} else {
		log.Printf("Deleted %d orders for user %d", deleted, userID)
	}

	return deleted, nil
}

package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBClient defines the interface needed for scanning.
type DynamoDBClient interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBRowFetcher implements RowFetcher over AWS DynamoDB. The source name
// maps to a table name.
type DynamoDBRowFetcher struct {
	Client DynamoDBClient
}

func NewDynamoDBRowFetcher(cfg aws.Config) *DynamoDBRowFetcher {
	return &DynamoDBRowFetcher{
		Client: dynamodb.NewFromConfig(cfg),
	}
}

// Fetch scans the source table, applying equality filters from params.
// Filter values are assumed to be strings.
func (f *DynamoDBRowFetcher) Fetch(source string, params map[string]string) ([]map[string]interface{}, error) {
	var filterExpression *string
	var expressionAttributeNames map[string]string
	var expressionAttributeValues map[string]types.AttributeValue

	if len(params) > 0 {
		expr := ""
		expressionAttributeNames = make(map[string]string)
		expressionAttributeValues = make(map[string]types.AttributeValue)
		idx := 0
		for k, v := range params {
			if idx > 0 {
				expr += " AND "
			}
			// #k for name, :v for value to avoid reserved word conflicts
			kName := fmt.Sprintf("#k%d", idx)
			vName := fmt.Sprintf(":v%d", idx)

			expr += fmt.Sprintf("%s = %s", kName, vName)
			expressionAttributeNames[kName] = k
			expressionAttributeValues[vName] = &types.AttributeValueMemberS{Value: v}
			idx++
		}
		filterExpression = aws.String(expr)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(source),
		FilterExpression:          filterExpression,
		ExpressionAttributeNames:  expressionAttributeNames,
		ExpressionAttributeValues: expressionAttributeValues,
	}

	paginator := dynamodb.NewScanPaginator(f.Client, input)
	var items []map[string]interface{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", source, err)
		}

		var pageItems []map[string]interface{}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
		items = append(items, pageItems...)
	}

	return items, nil
}

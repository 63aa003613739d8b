package greengrass

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws/arn"
	"github.com/aws/aws-sdk-go/aws/endpoints"
)

const defaultPartition = "aws"

// ComponentARN returns the account-scoped ARN of a component (without version).
func ComponentARN(region, accountID, componentName string) string {
	return arn.ARN{
		Partition: partitionFor(region),
		Service:   "greengrass",
		Region:    region,
		AccountID: accountID,
		Resource:  "components:" + componentName,
	}.String()
}

// CoreDeviceName extracts the thing name from a core device target ARN
// (arn:aws:iot:<region>:<account>:thing/<name>). Thing group targets and
// anything unparsable return false.
func CoreDeviceName(targetARN string) (string, bool) {
	parsed, err := arn.Parse(targetARN)
	if err != nil || parsed.Service != "iot" {
		return "", false
	}
	name := strings.TrimPrefix(parsed.Resource, "thing/")
	if name == parsed.Resource || name == "" {
		return "", false
	}
	return name, true
}

func partitionFor(region string) string {
	if p, ok := endpoints.PartitionForRegion(endpoints.DefaultPartitions(), region); ok {
		return p.ID()
	}
	return defaultPartition
}

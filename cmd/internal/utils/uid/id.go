package uid

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/gommon/log"
)

// epochMillis is 2024-01-01T00:00:00Z, the start of the commitments ledger.
const epochMillis int64 = 1704067200000

var (
	node *snowflake.Node
	once sync.Once
)

func Init(machineID int64) {
	once.Do(func() {
		snowflake.Epoch = epochMillis

		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			log.Fatalf("failed to initialize snowflake node: %v", err)
		}
	})
}

func Generate() int64 {
	if node == nil {
		log.Fatalf("uid package not initialized")
	}
	return node.Generate().Int64()
}

// GenerateString returns a new id in its decimal document form.
func GenerateString() string {
	if node == nil {
		log.Fatalf("uid package not initialized")
	}
	return node.Generate().String()
}

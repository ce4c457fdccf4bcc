package common

const (
	ComponentIndexer         = "indexer"
	ComponentRegistry        = "registry"
	ComponentRegistryWatcher = "registry-watcher"
	ComponentCursor          = "cursor"
	ComponentLogStore        = "log-store"
	ComponentRPC             = "rpc"
	ComponentProjector       = "projector"
	ComponentDB              = "db"
	ComponentOps             = "ops"
)

var AllComponents = map[string]struct{}{
	ComponentIndexer:         {},
	ComponentRegistry:        {},
	ComponentRegistryWatcher: {},
	ComponentCursor:          {},
	ComponentLogStore:        {},
	ComponentRPC:             {},
	ComponentProjector:       {},
	ComponentDB:              {},
	ComponentOps:             {},
}

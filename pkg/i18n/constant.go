package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL        = "error.internal"
	ERROR_NOT_FOUND       = "error.notfound"
	ERROR_INVALIDARGUMENT = "error.invalidargument"
	ERROR_FORBIDDEN       = "error.forbidden"
	ERROR_UNSUPPORTED     = "error.unsupported.filetype"
	ERROR_EMPTY_CONTENT   = "error.empty.content"
	ERROR_AI_OVERLOADED   = "error.ai.overloaded"
	ERROR_AI_FAILED       = "error.ai.failed"
	ERROR_TREE_INVALID    = "error.tree.invalid"
	ERROR_EMBEDDING       = "error.embedding.failed"
)

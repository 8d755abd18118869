package constraints

// Export formats accepted by the export endpoints.
const (
	FormatJSON           = "json"
	FormatJSONByLanguage = "json-by-language"
	FormatCSV            = "csv"
	FormatAndroid        = "android"
	FormatIOS            = "ios"
)

// Storage backends selectable through config.
const (
	BackendFile   = "file"
	BackendRemote = "remote"
)

// Lock modes for the file backend.
const (
	LockMutex = "mutex"
	LockNone  = "none"
	LockEtcd  = "etcd"
)

// SQL dialects for the remote backend.
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// FeatureFormats can export a whole feature; FieldFormats a single field.
var (
	FeatureFormats = []string{FormatJSON, FormatJSONByLanguage, FormatCSV}
	FieldFormats   = []string{FormatAndroid, FormatIOS}
)

package opentdb

const (
	// Base URL
	BaseURL = "https://opentdb.com"

	// API Endpoints
	QuestionsEndpoint  = "/api.php"
	CategoriesEndpoint = "/api_category.php"

	// Question types
	TypeMultiple = "multiple"

	// Provider category IDs
	CategoryGeneralKnowledge = 9
	CategoryComputers        = 18
	CategorySports           = 21
	CategoryGeography        = 22
	CategoryHistory          = 23

	// API response codes
	CodeSuccess          = 0
	CodeNoResults        = 1
	CodeInvalidParameter = 2
	CodeTokenNotFound    = 3
	CodeTokenEmpty       = 4
)

// categoryMap maps our internal category names to Open Trivia DB category
// IDs. Names missing from this map fall through to the random path.
var categoryMap = map[string]int{
	"general_knowledge": CategoryGeneralKnowledge,
	"technology":        CategoryComputers,
	"indian_history":    CategoryHistory,
}

// randomCategories is the fan-out set used when no single category applies:
// General Knowledge, Computers, History, Sports, Geography.
var randomCategories = []int{
	CategoryGeneralKnowledge,
	CategoryComputers,
	CategoryHistory,
	CategorySports,
	CategoryGeography,
}

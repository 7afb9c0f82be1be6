package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"
	FieldSubject   = "subject"
	FieldScope     = "scope"

	// Service
	FieldService = "service"

	// Run
	FieldRunID   = "run_id"
	FieldStoreID = "store_id"

	// Search
	FieldQuery        = "query"
	FieldUserLocation = "user_location"
	FieldNumResults   = "num_results"
	FieldIncludeText  = "include_text"
	FieldResultCount  = "result_count"
	FieldExaRequestID = "exa_request_id"
	FieldSearchType   = "search_type"
	FieldCost         = "exa_cost"

	// Outbound
	FieldHost = "host"
)

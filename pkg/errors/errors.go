package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// OrderValidationError represents a malformed order submission.
	OrderValidationError ErrorCode = "order_validation_error"
	// InsufficientBalanceError represents a rejected submission due to the
	// balance keeper refusing the reserve.
	InsufficientBalanceError ErrorCode = "insufficient_balance_error"
	// BookHaltedError represents a market whose book detected an invariant
	// violation and refuses further mutation.
	BookHaltedError ErrorCode = "book_halted_error"

	// OrderMarshalError represents an error encoding an order for persistence.
	OrderMarshalError ErrorCode = "order_marshal_error"
	// OrderPersistError represents an error writing an order to the store.
	OrderPersistError ErrorCode = "order_persist_error"
	// OrderLoadError represents an error reading an order from the store.
	OrderLoadError ErrorCode = "order_load_error"
	// OrderUnmarshalError represents an error decoding a stored order.
	OrderUnmarshalError ErrorCode = "order_unmarshal_error"
	// TradePublishError represents an error publishing a trade event.
	TradePublishError ErrorCode = "trade_publish_error"
	// DepthPublishError represents an error publishing a depth snapshot.
	DepthPublishError ErrorCode = "depth_publish_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisHGetError represents an error when getting a field from a hash in Redis.
	RedisHGetError ErrorCode = "redis_hget_error"
	// RedisHSetError represents an error when setting fields in a hash in Redis.
	RedisHSetError ErrorCode = "redis_hset_error"
)

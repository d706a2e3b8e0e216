package projector

const (
	// Refresh requests published by the sweeper; the refresher consumes them.
	TOPIC_REFRESH_REQUEST = "topic.refresh_request"
	// Refresh outcomes published by the refresher; the reporter consumes them.
	TOPIC_REFRESH_OUTCOME = "topic.refresh_outcome"

	DDOG_REFRESH_OK_COUNTER   = "projector.refresh.ok"
	DDOG_REFRESH_FAIL_COUNTER = "projector.refresh.fail"
)

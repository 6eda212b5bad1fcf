package youtube

var (
	MapFormat     = mapFormat
	ClassifyError = classifyError
)

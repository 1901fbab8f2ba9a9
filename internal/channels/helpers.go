package channels

func stringField(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

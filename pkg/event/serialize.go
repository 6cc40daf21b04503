package event

import (
	"encoding/json"
	"log"
)

// JSON は通知ペイロードをJSON文字列にシリアライズする。
// 失敗した場合はログに記録し、エラーを示すJSONを返す。
func (n OutgoingNotification) JSON() string {
	data, err := json.Marshal(n)
	if err != nil {
		log.Printf("通知ペイロードのシリアライズに失敗: %v", err)
		return `{"error":"serialization failed"}`
	}
	return string(data)
}

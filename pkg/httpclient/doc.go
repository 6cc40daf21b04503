// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// トーナメント関連サービスが通知サービスのAPIを呼び出す際の
// 通信パターン（JSONシリアライズ、タイムアウト、認証トークンの伝播）を
// 統一する。
package httpclient

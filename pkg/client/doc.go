// Package client は通知サービスAPIの型付きクライアントを提供する。
//
// トーナメントサービスや対戦管理サービスが通知を送信する際、
// HTTPの詳細を意識せずに呼び出せるようにする。
package client

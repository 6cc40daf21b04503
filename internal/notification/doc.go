// Package notification はトーナメント通知サービスの内部実装を提供する。
//
// トーナメント関連サービスから受け取った通知をSQLiteに永続化し、
// SSEで購読中の受信者へリアルタイムに配信する。通知の一覧取得や
// 既読管理も行う。オフラインの受信者への配信は行わず、レコードは
// 後から一覧APIで取得できる。
package notification

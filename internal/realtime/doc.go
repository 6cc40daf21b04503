// Package realtime は接続中クライアントへの通知のリアルタイム配信を提供する。
//
// 受信者ごとのライブ接続を管理するレジストリ、接続のライフサイクル
// 状態機械、および新規通知を購読者へファンアウトするディスパッチャを含む。
// レジストリは単一プロセス内のインメモリ実装であり、プロセスを跨ぐ
// ファンアウトは行わない。
package realtime

// Package observability ログとメトリクスの共通設定を提供する
//
// # 責務
//   - zerolog ロガーの初期化とレベル解決
//   - gin 用のリクエストログ・メトリクス収集ミドルウェア
//   - カメラへのリクエスト数・所要時間・死活状態の Prometheus メトリクス
package observability

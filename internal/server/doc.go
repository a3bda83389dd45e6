// Package server はPTZカメラを操作するHTTP APIを提供します。
//
// 責務:
//   - HTTPサーバーの起動とグレースフルシャットダウン
//   - 登録カメラの一覧・追加・削除
//   - 各カメラへのPTZコマンド（移動・停止・ズーム・プリセット）の中継
//   - ヘルスチェックと Prometheus メトリクスの公開
//
// 仕様:
//   - ルーティングは gin を使用
//   - リクエストログは zerolog、メトリクスは prometheus client_golang
//   - CORS の許可オリジンは設定で指定する
//   - エラーは ErrorResponse で返す
//     camera_not_found(404), camera_exists(409), invalid_request(400), camera_error(502)
//   - カメラの死活監視はサーバーの起動・停止に合わせて開始・停止する
package server

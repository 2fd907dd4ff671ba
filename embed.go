// embed.go - 数据文件嵌入声明
// 必须放在项目根目录（与 data/ 同级），//go:embed 只能嵌入当前包目录及其子目录
package main

import "embed"

//go:embed data/levels data/tuning.yaml data/units.yaml
var dataFS embed.FS

package main

import (
	"flag"
	"fmt"
	"os"

	"PostServer/pkg/util"
)

// 生成账号密码哈希，用于手工初始化测试账号或重置密码
// 用法: go run ./cmd -password 123456
func main() {
	plainPassword := flag.String("password", "123456", "明文密码")
	flag.Parse()

	hashedPassword, err := util.HashPassword(*plainPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加密失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("明文密码: %s\n", *plainPassword)
	fmt.Printf("加密后的密码: %s\n", hashedPassword)
	fmt.Println("\n将加密后的密码复制到 accounts.password 即可")
}

package main

import "github.com/lexrag/aigateway/internal/app"

func main() {
	err := app.NewAIGateway().Run()
	if err != nil {
		panic(err)
	}
}

package main

import (
	"mixup-graphql-api/internal/config"
	"mixup-graphql-api/pkg/server"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

var container *server.Container

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	container, err = server.NewContainer(cfg)
	if err != nil {
		panic("Failed to initialize container: " + err.Error())
	}
}

func main() {
	// The engine itself starts lazily on the first invocation and is reused
	// by warm invocations of the same process.
	switch container.Config.EventSource {
	case "apigateway":
		awslambda.Start(container.GraphQLHandler.HandleAPIGateway)
	default:
		awslambda.Start(container.GraphQLHandler.Handle)
	}
}

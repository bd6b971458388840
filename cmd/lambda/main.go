package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/joho/godotenv"
	"github.com/mwhitney/accountability-game/internal/config"
	"github.com/mwhitney/accountability-game/internal/container"
	"github.com/mwhitney/accountability-game/internal/router"
)

var chiLambda *chiadapter.ChiLambda

func proxy(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return chiLambda.ProxyWithContext(ctx, req)
}

func main() {
	// Local runs load .env; on Lambda the environment is already set.
	_ = godotenv.Load()

	c := container.New()
	r := router.New(router.RouterConfig{
		UserHandler: c.UserContainer.Handler,
		GameHandler: c.GameContainer.Handler,
		GoalHandler: c.GoalContainer.Handler,
	})

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		chiLambda = chiadapter.New(r)
		lambda.Start(proxy)
		return
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	config.Logger().Infof("Listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		config.Logger().WithError(err).Fatal("Server stopped")
	}
}

package main

import (
	"context"

	"github.com/adanyl0v/tasklist/internal/app"
)

func main() {
	a := app.New()
	a.MustReadEnv()
	a.MustInitApplicationLogger()

	ctx := context.Background()
	a.MustOpenStore(ctx)
	defer a.CloseStore()

	a.MustListenAndServeHTTP(ctx)
}

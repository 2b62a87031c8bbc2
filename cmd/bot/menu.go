package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mt5-bands-bot/internal/engine"
	"mt5-bands-bot/internal/logger"
)

// menuLoop is the foreground control surface. It only starts and signals the
// worker; it never touches trading state directly, so the worker stays the
// single writer.
func menuLoop(ctx context.Context, sup *engine.Supervisor, sigc <-chan os.Signal) error {
	input := make(chan string)
	go func() {
		defer close(input)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			input <- strings.TrimSpace(sc.Text())
		}
	}()

	for {
		printMenu(sup.State())

		select {
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			shutdown(sup)
			return nil

		case line, ok := <-input:
			if !ok {
				shutdown(sup)
				return nil
			}
			switch line {
			case "0":
				fmt.Println("Closing")
				shutdown(sup)
				return nil
			case "1":
				if err := sup.Start(ctx); err != nil {
					if errors.Is(err, engine.ErrAlreadyRunning) {
						fmt.Println("Strategy already running.")
						continue
					}
					return err
				}
				fmt.Println("Strategy started.")
			case "2":
				fmt.Println("Stopping")
				sup.RequestStop()
			case "":
			default:
				fmt.Printf("Unknown option %q\n", line)
			}
		}
	}
}

// shutdown stops the worker (flattening any open position) and waits for it
// to reach the stopped state.
func shutdown(sup *engine.Supervisor) {
	sup.RequestStop()
	sup.Wait()
}

func printMenu(state engine.State) {
	fmt.Println("-----------------------------------------")
	fmt.Printf("0: Exit, 1: Start strategy, 2: Stop strategy   [worker: %s]\n", state)
	fmt.Println("-----------------------------------------")
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/bz888/deepchat/internal/api"
	serverClient "github.com/bz888/deepchat/internal/api/server/client"
	"github.com/bz888/deepchat/internal/clipboard"
	"github.com/bz888/deepchat/internal/config"
	"github.com/bz888/deepchat/internal/logger"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var app *tview.Application

var (
	debugConsole  *tview.TextView
	textView      *tview.TextView
	reasoningView *tview.TextView
	textArea      *tview.TextArea
	pages         *tview.Pages
	mainFlex      *tview.Flex
	localLogger   *logger.Logger
)

var (
	mu           sync.Mutex
	currentModel string
	lastReply    string
	debugShown   bool
)

func Init() {
	app = tview.NewApplication()
	app.EnablePaste(true)
	app.EnableMouse(true)

	debugConsole = initDebugConsole()

	textView = initChatViewer()
	reasoningView = initReasoningViewer()
	textArea = initChatInput()
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("Conversation").SetBorder(true)
	textView.SetScrollable(true)
	textView.ScrollToEnd()
	return textView
}

func initReasoningViewer() *tview.TextView {
	view := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(true).
		SetWordWrap(true)

	view.SetTitle("Reasoning").SetBorder(true)
	view.SetTextColor(tcell.ColorGray)
	view.ScrollToEnd()
	return view
}

func initChatInput() *tview.TextArea {
	textArea := tview.NewTextArea()
	textArea.SetTitle("Question").SetBorder(true)
	return textArea
}

func initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// Run builds the layout and blocks until the application exits.
func Run() {
	localLogger = logger.NewLogger("views")
	setModel(config.Model)

	textView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter:
			app.SetFocus(textArea)
		}
		return event
	})

	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 3, false).
		AddItem(reasoningView, 0, 1, false).
		AddItem(textArea, 8, 2, true)
	mainFlex = tview.NewFlex().
		AddItem(chatFlex, 0, 2, false)

	if config.Dev {
		mainFlex.AddItem(debugConsole, 0, 1, true)
		debugShown = true
	}

	setInputCapture(commands())

	pages = tview.NewPages().AddPage("main", mainFlex, true, true)
	go refreshModel()

	if err := app.SetRoot(pages, true).SetFocus(textArea).Run(); err != nil {
		panic(err)
	}
}

func commands() []command {
	var cmds []command
	cmds = []command{
		{name: "/help", help: "Display this help message", run: func(string) {
			fmt.Fprint(textView, "\n"+tview.Escape(helpText(cmds))+"\n")
		}},
		{name: "/bye", aliases: []string{"/quit", "/exit"}, help: "Exit the application", run: func(string) {
			quitApp()
		}},
		{name: "/debug", help: "Toggle the debug console", run: func(string) {
			toggleDebugConsole()
		}},
		{name: "/models", help: "Select between DeepSeek models", run: func(string) {
			createModelModal()
		}},
		{name: "/model", args: "<id>", help: "Switch to the model with this id", run: selectModel},
		{name: "/share", args: "[context]", help: "Share the last reply and copy the share text", run: shareLastReply},
		{name: "/shares", help: "List recent shares", run: func(string) {
			listShares()
		}},
		{name: "/copy", help: "Copy the last reply to the clipboard", run: func(string) {
			copyLastReply()
		}},
		{name: "/clear", help: "Start a new conversation", run: func(string) {
			clearConversation()
		}},
		{name: "/key", args: "<key>", help: "Store the DeepSeek API key", run: setKey},
	}
	return cmds
}

func setInputCapture(cmds []command) {
	textArea.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyESC:
			if textView.GetText(false) != "" {
				app.SetFocus(textView)
			}
		case tcell.KeyEnter:
			content := textArea.GetText()
			if strings.TrimSpace(content) == "" {
				return nil
			}
			textArea.SetText("", true)
			textArea.SetDisabled(true)

			name, arg, isCommand := parseCommand(content)
			if !isCommand {
				go func() {
					defer enableInput()
					chat(content)
				}()
				return nil
			}

			cmd, found := findCommand(cmds, name)
			go func() {
				defer enableInput()
				if !found {
					fmt.Fprintf(textView, "\nUnknown command %s, type /help for the list\n", tview.Escape(name))
					return
				}
				cmd.run(arg)
			}()
			return nil
		}
		return event
	})
}

func enableInput() {
	app.QueueUpdateDraw(func() {
		textArea.SetDisabled(false)
	})
}

func chat(content string) {
	model := getModel()
	fmt.Fprintf(textView, "\n[red::]You:[-]\n%s\n\n[green::]Bot:[-]\n", tview.Escape(content))
	localLogger.Info("Chat request, model: ", model)

	var reply strings.Builder
	reasoning := false
	err := api.Chat(context.Background(), model, content, func(resp serverClient.ChatResponse) {
		switch resp.Type {
		case serverClient.EventContent.String():
			reply.WriteString(resp.Text)
			fmt.Fprint(textView, tview.Escape(resp.Text))
		case serverClient.EventReasoning.String():
			if !reasoning {
				reasoning = true
				fmt.Fprint(reasoningView, "\n")
			}
			fmt.Fprint(reasoningView, tview.Escape(resp.Text))
		case serverClient.EventError.String():
			fmt.Fprintf(textView, "\n[red::]%s[-]\n", tview.Escape(resp.Text))
		case serverClient.EventComplete.String():
			fmt.Fprint(textView, "\n")
		}
	})
	if err != nil {
		localLogger.Error("Chat failed: ", err)
		fmt.Fprintf(textView, "\n[red::]Request failed: %s[-]\n", tview.Escape(err.Error()))
		return
	}

	if reply.Len() > 0 {
		mu.Lock()
		lastReply = reply.String()
		mu.Unlock()
	}
}

func getModel() string {
	mu.Lock()
	defer mu.Unlock()
	return currentModel
}

func setModel(model string) {
	mu.Lock()
	currentModel = model
	mu.Unlock()
}

func refreshModel() {
	models, err := api.ListModels(context.Background())
	if err != nil {
		localLogger.Warn("Failed to load models: ", err)
		return
	}
	setModel(models.Current)
	app.QueueUpdateDraw(func() {
		textView.SetTitle("Conversation (" + models.Current + ")")
	})
}

func selectModel(model string) {
	if model == "" {
		fmt.Fprint(textView, "\nUsage: /model <id>\n")
		return
	}
	models, err := api.SelectModel(context.Background(), model)
	if err != nil {
		localLogger.Warn("Failed to select model: ", err)
		fmt.Fprintf(textView, "\n[red::]Cannot use model %s: %s[-]\n", tview.Escape(model), tview.Escape(err.Error()))
		return
	}
	setModel(models.Current)
	fmt.Fprintf(textView, "\nUsing Model: %s\n", models.Current)
	app.QueueUpdateDraw(func() {
		textView.SetTitle("Conversation (" + models.Current + ")")
	})
}

func createModal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func createModelModal() {
	models, err := api.ListModels(context.Background())
	if err != nil {
		localLogger.Error("Failed to list models: ", err)
		fmt.Fprintf(textView, "\n[red::]Failed to list models: %s[-]\n", tview.Escape(err.Error()))
		return
	}

	closeModal := func() {
		pages.RemovePage("modelModal")
		app.SetFocus(textArea)
	}

	list := tview.NewList()
	list.SetBorder(true).SetTitle("Models")
	for i, model := range models.Models {
		shortcut := '1' + rune(i)
		if model == models.Current {
			list.AddItem(model, "Current model", shortcut, func() {
				fmt.Fprintf(textView, "\nAlready using model: %s\n", model)
				closeModal()
			})
			continue
		}
		list.AddItem(model, "", shortcut, func() {
			closeModal()
			go selectModel(model)
		})
	}
	list.AddItem("Back", "", 'q', closeModal)

	app.QueueUpdateDraw(func() {
		pages.AddPage("modelModal", createModal(list, 40, 10), true, true)
		app.SetFocus(list)
	})
	localLogger.Info("/models command executed and completed")
}

func shareLastReply(arg string) {
	shared, err := api.Share(context.Background(), arg == "context")
	if err != nil {
		localLogger.Warn("Share failed: ", err)
		fmt.Fprintf(textView, "\n[red::]Share failed: %s[-]\n", tview.Escape(err.Error()))
		return
	}

	fmt.Fprintf(textView, "\nShared as %s\nLink: %s\n", shared.Share.ID, shared.Link)
	if clipboard.Copy(shared.Text) {
		fmt.Fprint(textView, "Share text copied to the clipboard\n")
	} else {
		fmt.Fprint(textView, "Clipboard unavailable, share text:\n"+tview.Escape(shared.Text)+"\n")
	}
}

func listShares() {
	items, err := api.Shares(context.Background())
	if err != nil {
		fmt.Fprintf(textView, "\n[red::]Failed to load shares: %s[-]\n", tview.Escape(err.Error()))
		return
	}
	if len(items) == 0 {
		fmt.Fprint(textView, "\nNo shares yet\n")
		return
	}
	fmt.Fprint(textView, "\nRecent shares:\n")
	for _, item := range items {
		fmt.Fprintf(textView, "- %s  %s  views: %d\n  %s\n",
			item.ID, item.CreatedAt.Local().Format("2006-01-02 15:04"), item.Views, tview.Escape(item.MessagePreview))
	}
}

func copyLastReply() {
	mu.Lock()
	reply := lastReply
	mu.Unlock()

	switch {
	case reply == "":
		fmt.Fprint(textView, "\nNothing to copy yet\n")
	case clipboard.Copy(reply):
		fmt.Fprint(textView, "\nLast reply copied to the clipboard\n")
	default:
		fmt.Fprint(textView, "\n[red::]Clipboard unavailable[-]\n")
	}
}

func clearConversation() {
	if err := api.ClearHistory(context.Background()); err != nil {
		fmt.Fprintf(textView, "\n[red::]Failed to clear history: %s[-]\n", tview.Escape(err.Error()))
		return
	}
	mu.Lock()
	lastReply = ""
	mu.Unlock()
	app.QueueUpdateDraw(func() {
		textView.Clear()
		reasoningView.Clear()
	})
}

func setKey(key string) {
	if key == "" {
		fmt.Fprint(textView, "\nUsage: /key <key>\n")
		return
	}
	if err := api.SetKey(context.Background(), key); err != nil {
		fmt.Fprintf(textView, "\n[red::]Failed to store API key: %s[-]\n", tview.Escape(err.Error()))
		return
	}
	fmt.Fprint(textView, "\nAPI key stored\n")
}

func toggleDebugConsole() {
	app.QueueUpdateDraw(func() {
		mu.Lock()
		defer mu.Unlock()
		if debugShown {
			mainFlex.RemoveItem(debugConsole)
			fmt.Fprint(textView, "\nDebug console disabled\n")
		} else {
			mainFlex.AddItem(debugConsole, 0, 1, false)
			fmt.Fprint(textView, "\nDebug console enabled\n")
		}
		debugShown = !debugShown
	})
}

func quitApp() {
	fmt.Fprint(textView, "Bye bye\n")
	localLogger.Close()
	app.Stop()
	log.Println("Shutting down gracefully.")
	os.Exit(0)
}

func GetDebugConsole() (*tview.TextView, error) {
	if debugConsole == nil {
		return nil, errors.New("debug console not initialized")
	}
	return debugConsole, nil
}

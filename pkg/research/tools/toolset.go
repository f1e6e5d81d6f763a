package tools

import (
	"context"
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

const (
	SearchToolName     = "search"
	WikipediaToolName  = "wikipedia"
	SaveToFileToolName = "save_text_to_file"

	SearchToolDescription     = "Search the web for information"
	WikipediaToolDescription  = "Look up a topic on Wikipedia and return a summary of the best matching article"
	SaveToFileToolDescription = "Saves structured research data to a text file"
)

// ResearchToolset exposes web search, Wikipedia and file saving to the agent.
type ResearchToolset struct {
	Searcher  *WebSearcher
	Wikipedia *Wikipedia
	Saver     *FileSaver
}

func NewResearchToolset(searcher *WebSearcher, wiki *Wikipedia, saver *FileSaver) *ResearchToolset {
	return &ResearchToolset{
		Searcher:  searcher,
		Wikipedia: wiki,
		Saver:     saver,
	}
}

func (t *ResearchToolset) Name() string {
	return "research_tools"
}

func (t *ResearchToolset) Tools(ctx agent.ReadonlyContext) ([]tool.Tool, error) {
	searchTool, err := functiontool.New[SearchArgs, SearchResp](
		functiontool.Config{
			Name:        SearchToolName,
			Description: SearchToolDescription,
		},
		t.searchTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search tool: %w", err)
	}

	wikiTool, err := functiontool.New[WikipediaArgs, WikipediaResp](
		functiontool.Config{
			Name:        WikipediaToolName,
			Description: WikipediaToolDescription,
		},
		t.wikipediaTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wikipedia tool: %w", err)
	}

	saveTool, err := functiontool.New[SaveArgs, SaveResp](
		functiontool.Config{
			Name:        SaveToFileToolName,
			Description: SaveToFileToolDescription,
		},
		t.saveTool,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create save tool: %w", err)
	}

	return []tool.Tool{searchTool, wikiTool, saveTool}, nil
}

type SearchArgs struct {
	Query string `json:"query" jsonschema:"the search query"`
}

type SearchResp struct {
	Results string `json:"results"`
}

// Wrapper for ADK tool interface
func (t *ResearchToolset) searchTool(ctx tool.Context, args SearchArgs) (SearchResp, error) {
	return t.Search(ctx, args)
}

func (t *ResearchToolset) Search(ctx context.Context, args SearchArgs) (SearchResp, error) {
	results, err := t.Searcher.Search(ctx, args.Query)
	if err != nil {
		return SearchResp{}, fmt.Errorf("web search failed: %w", err)
	}
	return SearchResp{Results: results}, nil
}

type WikipediaArgs struct {
	Query string `json:"query" jsonschema:"the topic to look up"`
}

type WikipediaResp struct {
	Content string `json:"content"`
}

func (t *ResearchToolset) wikipediaTool(ctx tool.Context, args WikipediaArgs) (WikipediaResp, error) {
	return t.LookupWikipedia(ctx, args)
}

func (t *ResearchToolset) LookupWikipedia(ctx context.Context, args WikipediaArgs) (WikipediaResp, error) {
	content, err := t.Wikipedia.Lookup(ctx, args.Query)
	if err != nil {
		return WikipediaResp{}, fmt.Errorf("wikipedia lookup failed: %w", err)
	}
	return WikipediaResp{Content: content}, nil
}

type SaveArgs struct {
	Text string `json:"text" jsonschema:"the research text to save"`
}

type SaveResp struct {
	Message string `json:"message"`
}

func (t *ResearchToolset) saveTool(ctx tool.Context, args SaveArgs) (SaveResp, error) {
	return t.SaveToFile(ctx, args)
}

func (t *ResearchToolset) SaveToFile(ctx context.Context, args SaveArgs) (SaveResp, error) {
	msg, err := t.Saver.Save(ctx, args.Text)
	if err != nil {
		return SaveResp{}, err
	}
	return SaveResp{Message: msg}, nil
}

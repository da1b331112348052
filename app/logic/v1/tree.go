package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/pkg/ai"
	"github.com/feynman-ai/feynman-ai/pkg/errors"
	"github.com/feynman-ai/feynman-ai/pkg/i18n"
	"github.com/feynman-ai/feynman-ai/pkg/retry"
	"github.com/feynman-ai/feynman-ai/pkg/types"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

type TreeLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewTreeLogic(ctx context.Context, core *core.Core) *TreeLogic {
	return &TreeLogic{
		ctx:  ctx,
		core: core,
	}
}

// GenerateTree 为主题生成扁平化的知识树
func (l *TreeLogic) GenerateTree(topic string) ([]types.KnowledgeNode, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("TreeLogic.GenerateTree.check", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	topicLang := utils.WhatLang(topic)
	slog.Info("generating knowledge tree",
		slog.String("topic", topic),
		slog.String("lang", topicLang))

	timer := l.core.Metrics().AIRequestTimer("generate_tree")
	defer timer.ObserveDuration()

	prompt := ai.BuildGenerateTreePrompt(topic, topicLang)
	opts := retry.Generation(ai.IsOverloaded).WithOnRetry(func(int) { l.core.Metrics().AIRetryInc("generate_tree") })
	resp, err := retry.Do(l.ctx, opts, func(ctx context.Context) (ai.GenerateResponse, error) {
		return l.core.Srv().AI().GenerateJSON(ctx, prompt)
	})
	if err != nil {
		l.core.Metrics().AIErrorInc("generate_tree")
		if ai.IsOverloaded(err) {
			return nil, errors.New("TreeLogic.GenerateTree.GenerateJSON", i18n.ERROR_AI_OVERLOADED, err).Code(http.StatusServiceUnavailable)
		}
		return nil, errors.New("TreeLogic.GenerateTree.GenerateJSON", i18n.ERROR_AI_FAILED, err)
	}

	nodes, err := parseTreeNodes(resp.Received)
	if err != nil {
		return nil, errors.New("TreeLogic.GenerateTree.parseTreeNodes", i18n.ERROR_TREE_INVALID, err)
	}

	if err = validateTree(nodes); err != nil {
		return nil, errors.New("TreeLogic.GenerateTree.validateTree", i18n.ERROR_TREE_INVALID, err)
	}

	return nodes, nil
}

var codeFenceRe = regexp.MustCompile("```json\\s*|```\\s*$")

// parseTreeNodes 解析模型返回的节点列表。
// 模型偶尔不遵守输出格式，依次尝试 nodes 字段、裸数组、对象中的任意数组值
func parseTreeNodes(raw string) ([]types.KnowledgeNode, error) {
	content := strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))
	if content == "" {
		return nil, fmt.Errorf("empty generation result")
	}

	var wrapper struct {
		Nodes []types.KnowledgeNode `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(content), &wrapper); err == nil && len(wrapper.Nodes) > 0 {
		return wrapper.Nodes, nil
	}

	var bare []types.KnowledgeNode
	if err := json.Unmarshal([]byte(content), &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &generic); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generation result, %w", err)
	}
	for _, v := range generic {
		var nodes []types.KnowledgeNode
		if err := json.Unmarshal(v, &nodes); err == nil && len(nodes) > 0 {
			return nodes, nil
		}
	}
	return nil, fmt.Errorf("no node list found in generation result")
}

// validateTree 结构校验：必须恰好一个根节点。
// 悬空的 parentId 不致命，记录告警后保留该节点
func validateTree(nodes []types.KnowledgeNode) error {
	if len(nodes) == 0 {
		return fmt.Errorf("empty node list")
	}

	ids := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		if node.ID == "" || node.Label == "" {
			return fmt.Errorf("node missing id or label")
		}
		if ids[node.ID] {
			return fmt.Errorf("duplicated node id %s", node.ID)
		}
		ids[node.ID] = true
	}

	roots := 0
	for _, node := range nodes {
		if node.ParentID == nil || *node.ParentID == "" {
			roots++
			continue
		}
		if !ids[*node.ParentID] {
			slog.Warn("tree node references unknown parent",
				slog.String("node_id", node.ID),
				slog.String("parent_id", *node.ParentID))
		}
	}
	if roots != 1 {
		return fmt.Errorf("expected exactly one root node, got %d", roots)
	}
	return nil
}

package tool

import (
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

// HandoffPrefix names the pseudo-tools through which a backend announces a
// handoff decision.
const HandoffPrefix = "transfer_to_"

func HandoffToolName(target string) string {
	return HandoffPrefix + target
}

// ParseHandoffTool reports the target named by a handoff pseudo-tool.
func ParseHandoffTool(name string) (string, bool) {
	if !strings.HasPrefix(name, HandoffPrefix) {
		return "", false
	}
	target := strings.TrimPrefix(name, HandoffPrefix)
	return target, target != ""
}

// BuildInfos converts the tools and handoff targets of a generation request
// into eino tool definitions. Handoffs come last.
func BuildInfos(tools []contractx.ToolSpec, handoffs []contractx.HandoffSpec) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(tools)+len(handoffs))
	for _, t := range tools {
		params := make(map[string]*schema.ParameterInfo, len(t.Params))
		for _, p := range t.Params {
			params[p.Name] = &schema.ParameterInfo{
				Type:     schema.String,
				Desc:     p.Description,
				Required: p.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        t.Name,
			Desc:        t.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	for _, h := range handoffs {
		infos = append(infos, &schema.ToolInfo{
			Name:        HandoffToolName(h.Target),
			Desc:        HandoffDescription(h),
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		})
	}
	return infos
}

// HandoffDescription is the tool description shown to the model for a handoff.
func HandoffDescription(h contractx.HandoffSpec) string {
	desc := "Hand off to the " + h.Target + " specialist to handle the request."
	if d := strings.TrimSpace(h.Description); d != "" {
		desc += " " + d
	}
	return desc
}

package policy

import (
	"strings"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/erro"

	"github.com/apivet/apivet/model"
)

// corePluginID is the plugin id the built-in capabilities register under.
const corePluginID = "core"

// Registry holds named capabilities keyed by "pluginId:capabilityId".
// Built-in policies are preloaded under the core plugin id and resolvable
// by bare name as well.
type Registry struct {
	policies   *abstract.SafeMap[string, model.Policy]
	validators *abstract.SafeMap[string, model.Validator]
	renderers  *abstract.SafeMap[string, model.Renderer]

	validatorKeys []string
	// bareNames maps unqualified capability names to the first qualified
	// key registered for them, so config-supplied policies stay
	// addressable by bare name like the built-ins.
	bareNames map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		policies:   abstract.NewSafeMap[string, model.Policy](),
		validators: abstract.NewSafeMap[string, model.Validator](),
		renderers:  abstract.NewSafeMap[string, model.Renderer](),
		bareNames:  make(map[string]string),
	}
	for _, p := range Builtins() {
		r.addPolicy(capabilityKey(corePluginID, p.Name()), p.Name(), p)
	}
	r.addValidator(capabilityKey(corePluginID, "analysis-health"), AnalysisHealthValidator{})
	return r
}

func capabilityKey(pluginID, capabilityID string) string {
	return pluginID + ":" + capabilityID
}

// RegisterPolicy adds a plugin policy capability.
func (r *Registry) RegisterPolicy(pluginID, capabilityID string, p model.Policy) error {
	if pluginID == "" || capabilityID == "" {
		return erro.New("plugin and capability ids are required")
	}
	key := capabilityKey(pluginID, capabilityID)
	if _, ok := r.policies.Lookup(key); ok {
		return erro.New("policy capability %s is already registered", key)
	}
	r.addPolicy(key, capabilityID, p)
	return nil
}

func (r *Registry) addPolicy(key, bareName string, p model.Policy) {
	r.policies.Set(key, p)
	if _, taken := r.bareNames[bareName]; !taken {
		r.bareNames[bareName] = key
	}
}

// RegisterValidator adds a plugin validator capability.
func (r *Registry) RegisterValidator(pluginID, capabilityID string, v model.Validator) error {
	if pluginID == "" || capabilityID == "" {
		return erro.New("plugin and capability ids are required")
	}
	key := capabilityKey(pluginID, capabilityID)
	if _, ok := r.validators.Lookup(key); ok {
		return erro.New("validator capability %s is already registered", key)
	}
	r.addValidator(key, v)
	return nil
}

// RegisterRenderer adds a plugin renderer capability.
func (r *Registry) RegisterRenderer(pluginID, capabilityID string, rd model.Renderer) error {
	if pluginID == "" || capabilityID == "" {
		return erro.New("plugin and capability ids are required")
	}
	key := capabilityKey(pluginID, capabilityID)
	if _, ok := r.renderers.Lookup(key); ok {
		return erro.New("renderer capability %s is already registered", key)
	}
	r.renderers.Set(key, rd)
	return nil
}

// Policy resolves a policy by qualified key or bare capability name.
func (r *Registry) Policy(name string) (model.Policy, bool) {
	if !strings.Contains(name, ":") {
		key, ok := r.bareNames[name]
		if !ok {
			return nil, false
		}
		name = key
	}
	return r.policies.Lookup(name)
}

func (r *Registry) addValidator(key string, v model.Validator) {
	r.validators.Set(key, v)
	r.validatorKeys = append(r.validatorKeys, key)
}

// Validators returns every registered validator in registration order.
func (r *Registry) Validators() []model.Validator {
	out := make([]model.Validator, 0, len(r.validatorKeys))
	for _, key := range r.validatorKeys {
		if v, ok := r.validators.Lookup(key); ok {
			out = append(out, v)
		}
	}
	return out
}

// Renderer resolves a renderer by qualified key or bare capability name.
func (r *Registry) Renderer(name string) (model.Renderer, bool) {
	if !strings.Contains(name, ":") {
		name = capabilityKey(corePluginID, name)
	}
	return r.renderers.Lookup(name)
}

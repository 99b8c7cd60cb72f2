package config

import "github.com/samber/lo"

// requiredKeys lists, per section, the keys that must be non-empty for the
// section to count as complete. Keys outside this list are optional.
var requiredKeys = map[string][]string{
	"identity":    {"password"},
	"rabbitmq":    {"url"},
	"node":        {"fqdn"},
	"network":     {"ovn_key", "ovn_cert", "ovn_cacert"},
	"credentials": {"ovn_metadata_proxy_shared_secret"},
}

// sectionKeys is the full key schema per section, required plus optional. It
// seeds the render context so templates never hit an undefined key.
var sectionKeys = map[string][]string{
	"identity": {
		"auth-url", "username", "password",
		"user-domain-name", "project-name", "project-domain-name", "region-name",
	},
	"rabbitmq": {"url"},
	"node":     {"fqdn", "ip-address"},
	"network": {
		"external-bridge", "external-bridge-address", "external-nic",
		"physnet-name", "ovn-sb-connection", "ovn_key", "ovn_cert", "ovn_cacert",
	},
	"credentials": {"ovn_metadata_proxy_shared_secret"},
	"logging":     {"debug"},
	"compute":     {"cpu-mode", "virt-type", "spice-proxy-address"},
}

type serviceSpec struct {
	name  string
	needs []string
}

// managedServices maps each service the snap runs to the sections that must be
// complete before it may start. Order here is the order readiness is reported in.
var managedServices = []serviceSpec{
	{"libvirtd", nil},
	{"neutron-ovn-metadata-agent", []string{"identity", "rabbitmq", "node", "network", "credentials"}},
	{"nova-api-metadata", []string{"identity", "rabbitmq", "node", "network"}},
	{"nova-compute", []string{"identity", "rabbitmq", "node"}},
	{"virtlogd", nil},
}

// Services returns every managed service name in declared order.
func Services() []string {
	return lo.Map(managedServices, func(s serviceSpec, _ int) string {
		return s.name
	})
}

// SectionComplete reports whether the named section exists and every one of
// its required keys carries a non-empty value. An absent section is incomplete.
func SectionComplete(name string, cfg Tree) bool {
	sec, ok := cfg[name]
	if !ok {
		return false
	}
	return lo.EveryBy(requiredKeys[name], func(key string) bool {
		return sec[key] != ""
	})
}

// ServicesNotReady returns the managed services that are still missing at
// least one required section, in declared service order.
func ServicesNotReady(cfg Tree) []string {
	var notReady []string
	for _, svc := range managedServices {
		blocked := lo.SomeBy(svc.needs, func(section string) bool {
			return !SectionComplete(section, cfg)
		})
		if blocked {
			notReady = append(notReady, svc.name)
		}
	}
	return notReady
}

// RenderContext returns a copy of cfg with every known section and key
// present, absent values defaulting to the empty string. Sections outside the
// schema are carried through untouched.
func RenderContext(cfg Tree) Tree {
	ctx := Tree{}
	for name, keys := range sectionKeys {
		ctx[name] = Section{}
		for _, key := range keys {
			ctx[name][key] = cfg.Get(name, key)
		}
	}
	for name, sec := range cfg {
		if _, known := ctx[name]; !known {
			ctx[name] = Section{}
		}
		for key, value := range sec {
			ctx[name][key] = value
		}
	}
	return ctx
}

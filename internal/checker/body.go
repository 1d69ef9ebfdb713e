package checker

import (
	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/defs"
	"surge/internal/symbols"
	"surge/internal/types"
)

// GetDefBody returns the structural body type for a Lazy definition,
// computing it via defs.Store.GetBody's cycle-guarded BodyComputer on first
// observation. Any file's Checker call can trigger this — a class in file A
// referencing an interface declared in file B resolves B's shape lazily,
// regardless of which file is "currently being checked".
func (c *Checker) GetDefBody(did defs.DefID) types.TypeID {
	return c.Defs.GetBody(did, c.computeDefBody)
}

func (c *Checker) computeDefBody(did defs.DefID, info *defs.Info) types.TypeID {
	site, ok := c.defSites[did]
	if !ok {
		return c.builtins.Any
	}
	// computeDefBody can fire while a different file is loaded into the
	// Checker (a lazy reference crossing file boundaries); swap in the
	// declaring file's builder/result/scope-index for the duration.
	prevBuilder, prevRes, prevIdx := c.builder, c.res, c.scopeByContainer
	c.builder, c.res = site.builder, site.res
	c.fileResults[site.res.File] = site.res
	if idx, ok := c.fileScopeIndex[site.res.File]; ok {
		c.scopeByContainer = idx
	} else {
		c.scopeByContainer = buildScopeIndex(site.res)
		c.fileScopeIndex[site.res.File] = c.scopeByContainer
	}
	defer func() { c.builder, c.res, c.scopeByContainer = prevBuilder, prevRes, prevIdx }()

	scope := c.scopeAt(site.decl, site.res.FileScope)

	switch site.kind {
	case defs.KindClass:
		return c.computeClassBody(did, site, scope, info)
	case defs.KindInterface:
		return c.computeInterfaceBody(site, scope, info)
	case defs.KindEnum:
		return c.computeEnumBody(did, site, info)
	case defs.KindNamespace:
		// Namespace-as-value typing (the merged `{}` shape of every exported
		// member) is out of scope for now — namespaces are checked for their
		// member declarations but not yet assignable as a structural object.
		return c.builtins.Any
	default:
		return c.builtins.Any
	}
}

func (c *Checker) computeClassBody(did defs.DefID, site defSite, scope symbols.ScopeID, info *defs.Info) types.TypeID {
	ci, ok := site.builder.GetClass(site.decl)
	if !ok || ci == nil {
		return c.builtins.Any
	}
	info.TypeParams = c.resolveDeclaredTypeParams(ci.TypeParams, scope)
	if ci.Extends.IsValid() {
		info.Extends = []types.TypeID{c.ResolveTypeNode(ci.Extends, scope)}
	}
	for _, impl := range ci.Implements {
		info.Implements = append(info.Implements, c.ResolveTypeNode(impl.TypeRef, scope))
	}

	instance, static := c.membersToShapes(ci.Members, scope)
	info.InstanceShape = c.Interner.NewObjectShape(instance)
	info.StaticShape = c.Interner.NewObjectShape(static)
	return info.InstanceShape
}

func (c *Checker) computeInterfaceBody(site defSite, scope symbols.ScopeID, info *defs.Info) types.TypeID {
	ii, ok := site.builder.GetInterface(site.decl)
	if !ok || ii == nil {
		return c.builtins.Any
	}
	info.TypeParams = c.resolveDeclaredTypeParams(ii.TypeParams, scope)
	for _, ext := range ii.Extends {
		info.Extends = append(info.Extends, c.ResolveTypeNode(ext, scope))
	}
	instance, _ := c.membersToShapes(ii.Members, scope)
	info.InstanceShape = c.Interner.NewObjectShape(instance)
	return info.InstanceShape
}

// membersToShapes splits a class/interface member list into its instance and
// static ObjectShapes (static only ever populated for classes). Assumes
// c.builder/c.res already point at the declaring file.
func (c *Checker) membersToShapes(members []ast.NodeIndex, scope symbols.ScopeID) (types.ObjectShape, types.ObjectShape) {
	var instance, static types.ObjectShape
	for _, m := range members {
		mn := c.builder.Get(m)
		if mn == nil {
			continue
		}
		prop := types.Property{
			Name:       mn.Name,
			Optional:   mn.Flags.Has(ast.FlagOptional),
			Readonly:   mn.Flags.Has(ast.FlagReadonly),
			IsMethod:   mn.Kind == ast.KindMethodDecl || mn.Kind == ast.KindConstructor,
			Visibility: visibilityOf(mn),
		}
		switch mn.Kind {
		case ast.KindMethodDecl, ast.KindConstructor, ast.KindAccessorDecl:
			prop.Type = c.computeFunctionType(c.builder, m, mn)
		default: // KindPropertyDecl
			switch {
			case mn.TypeAnn.IsValid():
				prop.Type = c.ResolveTypeNode(mn.TypeAnn, scope)
			case mn.Init.IsValid():
				prop.Type = c.widen(c.GetTypeOfNode(mn.Init))
			default:
				prop.Type = c.builtins.Any
			}
		}
		if mn.Flags.Has(ast.FlagStatic) {
			static.Properties = append(static.Properties, prop)
		} else {
			instance.Properties = append(instance.Properties, prop)
		}
	}
	return instance, static
}

// resolveDeclaredTypeParams reads back the symbols the Binder already
// declared for a class/interface's own type parameter list (bindClass/
// bindInterface's declareTypeParam calls), so the TypeParamDef identity used
// here matches the one computeTypeParam assigns when a member's type
// annotation refers to the same name — required for generics.go's
// expandApplication substitution map to actually hit.
func (c *Checker) resolveDeclaredTypeParams(nodes []ast.NodeIndex, scope symbols.ScopeID) []types.TypeID {
	out := make([]types.TypeID, 0, len(nodes))
	for _, tp := range nodes {
		n := c.builder.Get(tp)
		if n == nil {
			continue
		}
		sid, ok := binder.ResolveIdentifier(c.res, scope, n.Name)
		if !ok {
			continue
		}
		out = append(out, c.GetTypeOfSymbol(c.res, c.builder, sid))
	}
	return out
}

func visibilityOf(n *ast.Node) types.PropertyVisibility {
	switch {
	case n.Flags.Has(ast.FlagPrivate):
		return types.VisibilityPrivate
	case n.Flags.Has(ast.FlagProtected):
		return types.VisibilityProtected
	default:
		return types.VisibilityPublic
	}
}

func (c *Checker) computeEnumBody(did defs.DefID, site defSite, info *defs.Info) types.TypeID {
	ei, ok := site.builder.GetEnum(site.decl)
	if !ok || ei == nil {
		return c.builtins.Any
	}
	for _, m := range ei.Members {
		mn := c.builder.Get(m)
		if mn == nil {
			continue
		}
		val := c.builtins.Number
		if mn.Init.IsValid() {
			val = c.GetTypeOfNode(mn.Init)
		}
		info.EnumMembers = append(info.EnumMembers, defs.EnumMember{Name: mn.Name, Value: val})
	}
	return c.Interner.Intern(types.Key{Kind: types.KindEnum, Enum: types.DefRef(did)})
}
